package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/exec-dashboard/internal/kpi"
)

// GetDashboard returns the full latest snapshot in one call.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.storage.Latest(r.Context())
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "No dashboard data available yet")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// GetExecutiveSummary returns the narrative summary from the latest snapshot.
func (h *Handlers) GetExecutiveSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.storage.Latest(r.Context())
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "No dashboard data available yet")
		return
	}
	respondJSON(w, http.StatusOK, snap.Summary)
}

// GetKPIs returns every classified KPI from the latest snapshot.
func (h *Handlers) GetKPIs(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.storage.Latest(r.Context())
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "No dashboard data available yet")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"kpis":         snap.KPIs,
		"generated_at": snap.GeneratedAt,
	})
}

// GetKPI returns one classified KPI by id.
func (h *Handlers) GetKPI(w http.ResponseWriter, r *http.Request) {
	id := kpi.ID(chi.URLParam(r, "id"))
	snap, ok := h.storage.Latest(r.Context())
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "No dashboard data available yet")
		return
	}
	for _, c := range snap.KPIs {
		if c.ID == id {
			respondJSON(w, http.StatusOK, c)
			return
		}
	}
	respondError(w, http.StatusNotFound, "KPI not found")
}

// GetHealthScore returns the composite health score with its factor
// breakdown.
func (h *Handlers) GetHealthScore(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.storage.Latest(r.Context())
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "No dashboard data available yet")
		return
	}
	respondJSON(w, http.StatusOK, snap.HealthScore)
}

// GetRecommendations returns the linked strategic recommendations.
func (h *Handlers) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.storage.Latest(r.Context())
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "No dashboard data available yet")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": snap.Recommendations,
		"generated_at":    snap.GeneratedAt,
	})
}

// GetHistory returns recent snapshots for trend charts. ?limit=N bounds
// the result; the default returns everything retained.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}
	hist := h.storage.History(limit)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": hist,
		"total":     len(hist),
	})
}

// TriggerRefresh runs a collection cycle immediately and returns the fresh
// snapshot.
func (h *Handlers) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.collector.RefreshNow(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "Refresh failed: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}
