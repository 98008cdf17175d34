package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/exec-dashboard/internal/insight"
)

// GetInsights returns all current insights, priority-ordered.
func (h *Handlers) GetInsights(w http.ResponseWriter, r *http.Request) {
	insights := h.insights.List()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"insights": insights,
		"total":    len(insights),
	})
}

// GetKPIInsights returns the insights attached to one KPI.
func (h *Handlers) GetKPIInsights(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"kpi_id":   id,
		"insights": h.insights.ForKPI(id),
	})
}

// UpdateInsight applies an executive edit to one insight. Provided fields
// replace the generated text; the insight is then marked as manually
// curated.
func (h *Handlers) UpdateInsight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch insight.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if patch.Priority != nil && !insight.ValidPriority(*patch.Priority) {
		respondError(w, http.StatusBadRequest, "Invalid priority")
		return
	}

	result := h.insights.Update(id, patch)
	if !result.Success {
		respondJSON(w, http.StatusNotFound, result)
		return
	}

	if h.journal != nil && result.Insight != nil {
		if err := h.journal.RecordEdit(r.Context(), id, patch, *result.Insight); err != nil {
			log.Printf("[api] recording insight edit: %v", err)
		}
	}

	respondJSON(w, http.StatusOK, result)
}
