package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/omegaui/leadrouter/internal/store"
)

type AttorneysHandler struct {
	store store.Store
}

func NewAttorneysHandler(s store.Store) *AttorneysHandler {
	return &AttorneysHandler{store: s}
}

type CreateAttorneyRequest struct {
	FirmName           string  `json:"firm_name"`
	LicensingState     string  `json:"licensing_state"`
	GeographicCoverage string  `json:"geographic_coverage,omitempty"`
	PracticeAreas      string  `json:"practice_areas,omitempty"`
	CapacityStatus     string  `json:"capacity_status,omitempty"`
	YearsExperience    float64 `json:"years_experience,omitempty"`
}

func (h *AttorneysHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAttorneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.FirmName == "" || req.LicensingState == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "firm_name and licensing_state required"})
		return
	}

	a := &store.Attorney{
		FirmName:           req.FirmName,
		LicensingState:     req.LicensingState,
		GeographicCoverage: req.GeographicCoverage,
		PracticeAreas:      req.PracticeAreas,
		CapacityStatus:     store.CapacityStatus(req.CapacityStatus),
		YearsExperience:    req.YearsExperience,
	}
	if a.CapacityStatus == "" {
		a.CapacityStatus = store.CapacityAvailable
	}

	if err := h.store.CreateAttorney(r.Context(), a); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AttorneysHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.AttorneyFilter{
		State: r.URL.Query().Get("state"),
	}
	if c := r.URL.Query().Get("capacity"); c != "" {
		capacity := store.CapacityStatus(c)
		filter.Capacity = &capacity
	}

	attorneys, err := h.store.ListAttorneys(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if attorneys == nil {
		attorneys = []*store.Attorney{}
	}
	writeJSON(w, http.StatusOK, attorneys)
}

func (h *AttorneysHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid attorney id"})
		return
	}

	a, err := h.store.GetAttorney(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "attorney not found"})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Update patches the mutable roster fields, mainly capacity as firms take on
// or wind down cases.
func (h *AttorneysHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid attorney id"})
		return
	}

	a, err := h.store.GetAttorney(r.Context(), id)
	if err != nil || a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "attorney not found"})
		return
	}

	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if c, ok := patch["capacity_status"].(string); ok {
		switch store.CapacityStatus(c) {
		case store.CapacityAvailable, store.CapacityLimited, store.CapacityFull:
			a.CapacityStatus = store.CapacityStatus(c)
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid capacity_status"})
			return
		}
	}
	if g, ok := patch["geographic_coverage"].(string); ok {
		a.GeographicCoverage = g
	}
	if p, ok := patch["practice_areas"].(string); ok {
		a.PracticeAreas = p
	}
	if y, ok := patch["years_experience"].(float64); ok {
		a.YearsExperience = y
	}

	if err := h.store.UpdateAttorney(r.Context(), a); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, a)
}
