package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ignite/exec-dashboard/internal/config"
	"github.com/ignite/exec-dashboard/internal/health"
	"github.com/ignite/exec-dashboard/internal/insight"
	"github.com/ignite/exec-dashboard/internal/kpi"
	"github.com/ignite/exec-dashboard/internal/storage"
)

func newTestCollector(t *testing.T, source Source) (*Collector, *insight.Store, *storage.Storage) {
	t.Helper()
	engine, err := insight.NewEngine(insight.DefaultRules())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	insights := insight.NewStore()
	store := storage.NewInMemory(8)
	c := New(source, health.NewRegistry(), engine, insights, store, nil,
		config.CollectorConfig{IntervalSeconds: 300})
	return c, insights, store
}

func TestDemoSourceCoversAllKPIs(t *testing.T) {
	readings, err := NewDemoSource().Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(readings) != len(kpi.Definitions()) {
		t.Fatalf("demo source returned %d readings, expected %d", len(readings), len(kpi.Definitions()))
	}
	seen := make(map[kpi.ID]bool)
	for _, r := range readings {
		if _, err := kpi.Lookup(r.ID); err != nil {
			t.Errorf("demo reading for undefined KPI %q", r.ID)
		}
		if seen[r.ID] {
			t.Errorf("duplicate demo reading for %q", r.ID)
		}
		seen[r.ID] = true
		if r.TargetValue <= 0 {
			t.Errorf("%q has no target", r.ID)
		}
		if len(r.HistoricalValues) != 12 {
			t.Errorf("%q has %d history points, expected 12", r.ID, len(r.HistoricalValues))
		}
	}
}

func TestRefreshNowPublishesSnapshot(t *testing.T) {
	c, insights, store := newTestCollector(t, NewDemoSource())
	ctx := context.Background()

	snap, err := c.RefreshNow(ctx)
	if err != nil {
		t.Fatalf("RefreshNow: %v", err)
	}

	if len(snap.KPIs) != len(kpi.Definitions()) {
		t.Errorf("snapshot has %d KPIs, expected %d", len(snap.KPIs), len(kpi.Definitions()))
	}
	if snap.HealthScore.Overall <= 0 || snap.HealthScore.Overall > 100 {
		t.Errorf("overall score out of range: %v", snap.HealthScore.Overall)
	}
	if snap.Summary.Narrative == "" {
		t.Error("snapshot should carry an executive summary")
	}

	// The insight store holds the same batch the snapshot carries.
	if insights.Len() != len(snap.Insights) {
		t.Errorf("insight store has %d, snapshot has %d", insights.Len(), len(snap.Insights))
	}

	stored, ok := store.Latest(ctx)
	if !ok {
		t.Fatal("storage should hold the latest snapshot")
	}
	if !stored.GeneratedAt.Equal(snap.GeneratedAt) {
		t.Error("stored snapshot differs from the returned one")
	}

	if c.LastFetch().IsZero() {
		t.Error("LastFetch should be set after a successful refresh")
	}
}

type failingSource struct{}

func (failingSource) Fetch(context.Context) ([]kpi.Reading, error) {
	return nil, errors.New("warehouse unreachable")
}

func TestRefreshNowSourceFailure(t *testing.T) {
	c, _, store := newTestCollector(t, failingSource{})

	if _, err := c.RefreshNow(context.Background()); err == nil {
		t.Fatal("refresh with a failing source should return the error")
	}
	if _, ok := store.Latest(context.Background()); ok {
		t.Error("no snapshot should be published on total fetch failure")
	}
}

type partialSource struct{}

func (partialSource) Fetch(context.Context) ([]kpi.Reading, error) {
	return []kpi.Reading{
		{ID: kpi.Revenue, CurrentValue: 800000, TargetValue: 1200000, Trend: kpi.TrendStable},
	}, errors.New("half the rollups timed out")
}

func TestRefreshNowPartialReadings(t *testing.T) {
	c, _, _ := newTestCollector(t, partialSource{})

	snap, err := c.RefreshNow(context.Background())
	if err != nil {
		t.Fatalf("partial fetch should still publish: %v", err)
	}
	if len(snap.KPIs) != 1 {
		t.Errorf("snapshot has %d KPIs, expected the 1 partial reading", len(snap.KPIs))
	}
}

type journalSpy struct {
	batches [][]insight.Insight
}

func (j *journalSpy) SaveBatch(_ context.Context, insights []insight.Insight) error {
	j.batches = append(j.batches, insights)
	return nil
}

func TestRefreshPersistsToJournal(t *testing.T) {
	engine, err := insight.NewEngine(insight.DefaultRules())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	journal := &journalSpy{}
	c := New(NewDemoSource(), health.NewRegistry(), engine, insight.NewStore(),
		storage.NewInMemory(8), journal, config.CollectorConfig{IntervalSeconds: 300})

	snap, err := c.RefreshNow(context.Background())
	if err != nil {
		t.Fatalf("RefreshNow: %v", err)
	}
	if len(journal.batches) != 1 {
		t.Fatalf("journal received %d batches, expected 1", len(journal.batches))
	}
	if len(journal.batches[0]) != len(snap.Insights) {
		t.Errorf("journal batch size %d, snapshot has %d insights",
			len(journal.batches[0]), len(snap.Insights))
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	c, _, store := newTestCollector(t, NewDemoSource())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	// The initial refresh runs before the first tick.
	deadline := time.After(2 * time.Second)
	for {
		if _, ok := store.Latest(context.Background()); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("initial refresh never published a snapshot")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if !c.IsRunning() {
		t.Error("collector should report running while started")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop on context cancel")
	}
	if c.IsRunning() {
		t.Error("collector should report stopped after cancel")
	}
}

func TestDemoHistoryTrendsTowardPrevious(t *testing.T) {
	readings, _ := NewDemoSource().Fetch(context.Background())
	for _, r := range readings {
		hist := r.HistoricalValues
		last := hist[len(hist)-1].Value
		if diff := last - r.PreviousValue; diff > 0.001 || diff < -0.001 {
			t.Errorf("%q: history should end at the previous value, got %v vs %v",
				r.ID, last, r.PreviousValue)
		}
		if hist[0].Period >= hist[len(hist)-1].Period {
			t.Errorf("%q: history periods should ascend", r.ID)
		}
	}
}
