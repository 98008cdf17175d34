package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ignite/exec-dashboard/internal/insight"
	"github.com/ignite/exec-dashboard/internal/storage"
)

// Refresher triggers an immediate collection cycle.
type Refresher interface {
	RefreshNow(ctx context.Context) (storage.Snapshot, error)
	LastFetch() time.Time
	IsRunning() bool
}

// EditJournal records executive edits to insights. Optional.
type EditJournal interface {
	RecordEdit(ctx context.Context, insightID string, patch insight.Patch, result insight.Insight) error
}

// Handlers holds the dependencies the HTTP handlers read from.
type Handlers struct {
	storage   *storage.Storage
	insights  *insight.Store
	collector Refresher
	journal   EditJournal
	startTime time.Time
}

// NewHandlers creates the handler set. journal may be nil.
func NewHandlers(store *storage.Storage, insights *insight.Store, collector Refresher, journal EditJournal) *Handlers {
	return &Handlers{
		storage:   store,
		insights:  insights,
		collector: collector,
		journal:   journal,
		startTime: time.Now(),
	}
}

// HealthCheck reports process liveness and collector state.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.startTime).Seconds()),
		"collector": map[string]interface{}{
			"running":    h.collector.IsRunning(),
			"last_fetch": h.collector.LastFetch(),
		},
	})
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
