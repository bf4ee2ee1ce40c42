package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/omegaui/leadrouter/internal/scoring"
	"github.com/omegaui/leadrouter/internal/store"
)

type PreviewHandler struct {
	store store.Store
}

func NewPreviewHandler(s store.Store) *PreviewHandler {
	return &PreviewHandler{store: s}
}

// Preview scores one lead/attorney pair on demand. Breakdowns are computed
// fresh from current records and never stored.
// GET /api/v1/scoring/preview?lead_id=...&attorney_id=...
func (h *PreviewHandler) Preview(w http.ResponseWriter, r *http.Request) {
	leadID, err := uuid.Parse(r.URL.Query().Get("lead_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lead_id"})
		return
	}
	attorneyID, err := uuid.Parse(r.URL.Query().Get("attorney_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid attorney_id"})
		return
	}

	lead, err := h.store.GetLead(r.Context(), leadID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if lead == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		return
	}

	attorney, err := h.store.GetAttorney(r.Context(), attorneyID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if attorney == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "attorney not found"})
		return
	}

	history, err := h.store.ListCaseRecords(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	result := scoring.Score(attorney, lead, history)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lead_id":         lead.ID,
		"attorney_id":     attorney.ID,
		"score":           result.Total,
		"threshold":       result.Threshold,
		"meets_threshold": result.MeetsThreshold(),
		"breakdown":       result.Breakdown,
	})
}
