package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/exec-dashboard/internal/config"
	"github.com/ignite/exec-dashboard/internal/health"
	"github.com/ignite/exec-dashboard/internal/insight"
	"github.com/ignite/exec-dashboard/internal/kpi"
	"github.com/ignite/exec-dashboard/internal/storage"
)

type fakeCollector struct {
	snap      storage.Snapshot
	err       error
	refreshed int
}

func (f *fakeCollector) RefreshNow(context.Context) (storage.Snapshot, error) {
	f.refreshed++
	return f.snap, f.err
}
func (f *fakeCollector) LastFetch() time.Time { return time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC) }
func (f *fakeCollector) IsRunning() bool      { return true }

func testSnapshot() storage.Snapshot {
	return storage.Snapshot{
		GeneratedAt: time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC),
		KPIs: []kpi.Classified{
			{Reading: kpi.Reading{ID: kpi.Revenue, CurrentValue: 1250000, TargetValue: 1200000, Trend: kpi.TrendUp}, HealthStatus: kpi.StatusExcellent},
			{Reading: kpi.Reading{ID: kpi.ProfitMargin, CurrentValue: 8, TargetValue: 18, Trend: kpi.TrendDown}, HealthStatus: kpi.StatusCritical},
		},
		HealthScore: health.CompositeScore{Overall: 71.3, Status: kpi.StatusGood},
		Insights: []insight.Insight{
			{ID: "ins-1", KPIID: kpi.ProfitMargin, Title: "Profit Margin at Critical Level", Priority: insight.PriorityHigh, IsAutoGenerated: true},
		},
		Summary: insight.ExecutiveSummary{Period: "Q3 2026", OverallHealth: kpi.StatusGood},
	}
}

// newTestServer wires a handler stack around an in-memory snapshot and
// insight store.
func newTestServer(t *testing.T, populated bool) (http.Handler, *insight.Store, *fakeCollector) {
	t.Helper()
	store := storage.NewInMemory(8)
	insights := insight.NewStore()
	snap := testSnapshot()
	if populated {
		store.Save(context.Background(), snap)
		insights.Replace(snap.Insights)
	}
	coll := &fakeCollector{snap: snap}
	h := NewHandlers(store, insights, coll, nil)
	return SetupRoutes(h, config.ServerConfig{}), insights, coll
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	handler, _, _ := newTestServer(t, false)
	rec := doRequest(t, handler, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestGetDashboard(t *testing.T) {
	handler, _, _ := newTestServer(t, true)
	rec := doRequest(t, handler, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap storage.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.KPIs, 2)
	assert.Equal(t, 71.3, snap.HealthScore.Overall)
	assert.Equal(t, "Q3 2026", snap.Summary.Period)
}

func TestGetDashboardEmpty(t *testing.T) {
	handler, _, _ := newTestServer(t, false)
	rec := doRequest(t, handler, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetKPI(t *testing.T) {
	handler, _, _ := newTestServer(t, true)

	rec := doRequest(t, handler, http.MethodGet, "/api/kpis/profit-margin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var c kpi.Classified
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, kpi.ProfitMargin, c.ID)
	assert.Equal(t, kpi.StatusCritical, c.HealthStatus)

	rec = doRequest(t, handler, http.MethodGet, "/api/kpis/unknown-metric", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetKPIInsights(t *testing.T) {
	handler, _, _ := newTestServer(t, true)
	rec := doRequest(t, handler, http.MethodGet, "/api/kpis/profit-margin/insights", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		KPIID    string            `json:"kpi_id"`
		Insights []insight.Insight `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "profit-margin", body.KPIID)
	require.Len(t, body.Insights, 1)
	assert.Equal(t, "ins-1", body.Insights[0].ID)
}

func TestGetHealthScore(t *testing.T) {
	handler, _, _ := newTestServer(t, true)
	rec := doRequest(t, handler, http.MethodGet, "/api/health-score", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var score health.CompositeScore
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &score))
	assert.Equal(t, 71.3, score.Overall)
	assert.Equal(t, kpi.StatusGood, score.Status)
}

func TestUpdateInsight(t *testing.T) {
	handler, insights, _ := newTestServer(t, true)

	body := []byte(`{"action": "Escalate to the CFO", "priority": "medium"}`)
	rec := doRequest(t, handler, http.MethodPut, "/api/insights/ins-1", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var result insight.UpdateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	require.NotNil(t, result.Insight)
	assert.Equal(t, "Escalate to the CFO", result.Insight.Action)
	assert.Equal(t, insight.PriorityMedium, result.Insight.Priority)
	assert.False(t, result.Insight.IsAutoGenerated)

	stored, ok := insights.Get("ins-1")
	require.True(t, ok)
	assert.Equal(t, "Escalate to the CFO", stored.Action)
}

func TestUpdateInsightUnknownID(t *testing.T) {
	handler, _, _ := newTestServer(t, true)
	rec := doRequest(t, handler, http.MethodPut, "/api/insights/ghost", []byte(`{"title": "x"}`))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var result insight.UpdateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, "Insight not found", result.Message)
}

func TestUpdateInsightBadRequest(t *testing.T) {
	handler, _, _ := newTestServer(t, true)

	rec := doRequest(t, handler, http.MethodPut, "/api/insights/ins-1", []byte(`{not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, handler, http.MethodPut, "/api/insights/ins-1", []byte(`{"priority": "urgent"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerRefresh(t *testing.T) {
	handler, _, coll := newTestServer(t, false)
	rec := doRequest(t, handler, http.MethodPost, "/api/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, coll.refreshed)

	var snap storage.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.KPIs, 2)
}

func TestGetHistory(t *testing.T) {
	handler, _, _ := newTestServer(t, true)

	rec := doRequest(t, handler, http.MethodGet, "/api/history?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Snapshots []storage.Snapshot `json:"snapshots"`
		Total     int                `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)

	rec = doRequest(t, handler, http.MethodGet, "/api/history?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetInsightsOrdering(t *testing.T) {
	handler, insights, _ := newTestServer(t, true)
	insights.Replace([]insight.Insight{
		{ID: "a", KPIID: kpi.Revenue, Priority: insight.PriorityHigh},
		{ID: "b", KPIID: kpi.NPS, Priority: insight.PriorityLow},
	})

	rec := doRequest(t, handler, http.MethodGet, "/api/insights", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Insights []insight.Insight `json:"insights"`
		Total    int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, "a", body.Insights[0].ID)
}
