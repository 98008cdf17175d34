// Package collector runs the dashboard refresh loop: fetch KPI readings,
// classify them, score overall health, generate insights, and publish the
// resulting snapshot.
package collector

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ignite/exec-dashboard/internal/config"
	"github.com/ignite/exec-dashboard/internal/health"
	"github.com/ignite/exec-dashboard/internal/insight"
	"github.com/ignite/exec-dashboard/internal/storage"
)

// InsightJournal persists generated insight batches. Optional; a nil
// journal disables persistence.
type InsightJournal interface {
	SaveBatch(ctx context.Context, insights []insight.Insight) error
}

// Collector drives periodic refreshes. It owns no HTTP surface; the API
// layer reads from the stores it publishes to.
type Collector struct {
	source   Source
	registry *health.Registry
	engine   *insight.Engine
	insights *insight.Store
	storage  *storage.Storage
	journal  InsightJournal
	config   config.CollectorConfig

	mu        sync.RWMutex
	lastFetch time.Time
	isRunning bool
}

// New creates a collector. journal may be nil.
func New(source Source, registry *health.Registry, engine *insight.Engine, insights *insight.Store, store *storage.Storage, journal InsightJournal, cfg config.CollectorConfig) *Collector {
	return &Collector{
		source:   source,
		registry: registry,
		engine:   engine,
		insights: insights,
		storage:  store,
		journal:  journal,
		config:   cfg,
	}
}

// Start begins the polling loop. It runs an immediate refresh, then ticks
// at the configured interval until ctx is canceled.
func (c *Collector) Start(ctx context.Context) {
	c.mu.Lock()
	c.isRunning = true
	c.mu.Unlock()

	log.Printf("[collector] starting, refresh interval %s", c.config.Interval())

	c.refresh(ctx)

	ticker := time.NewTicker(c.config.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[collector] stopping")
			c.mu.Lock()
			c.isRunning = false
			c.mu.Unlock()
			return
		case <-ticker.C:
			c.refresh(ctx)
		}
	}
}

// RefreshNow runs a single refresh cycle outside the ticker, for the
// manual refresh endpoint.
func (c *Collector) RefreshNow(ctx context.Context) (storage.Snapshot, error) {
	return c.refresh(ctx)
}

// LastFetch reports when the most recent successful refresh completed.
func (c *Collector) LastFetch() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastFetch
}

// IsRunning reports whether the polling loop is active.
func (c *Collector) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isRunning
}

func (c *Collector) refresh(ctx context.Context) (storage.Snapshot, error) {
	start := time.Now()

	readings, err := c.source.Fetch(ctx)
	if err != nil {
		log.Printf("[collector] fetching readings: %v", err)
		if len(readings) == 0 {
			return storage.Snapshot{}, err
		}
		log.Printf("[collector] continuing with %d partial readings", len(readings))
	}

	classified := c.registry.ClassifyAll(readings)
	score := health.Score(health.FactorsFromClassified(classified))
	insights := c.engine.Generate(classified)
	recommendations := insight.LinkRecommendations(insights)
	summary := insight.BuildExecutiveSummary(classified, insights, score, start.UTC())

	c.insights.Replace(insights)

	snap := storage.Snapshot{
		GeneratedAt:     start.UTC(),
		KPIs:            classified,
		HealthScore:     score,
		Insights:        insights,
		Recommendations: recommendations,
		Summary:         summary,
	}
	c.storage.Save(ctx, snap)

	if c.journal != nil {
		if err := c.journal.SaveBatch(ctx, insights); err != nil {
			log.Printf("[collector] persisting insights: %v", err)
		}
	}

	c.mu.Lock()
	c.lastFetch = time.Now()
	c.mu.Unlock()

	log.Printf("[collector] refresh complete: %d KPIs, %d insights, overall %.1f (%s) in %s",
		len(classified), len(insights), score.Overall, score.Status, time.Since(start).Round(time.Millisecond))

	return snap, nil
}
