package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/omegaui/leadrouter/internal/dispatch"
	"github.com/omegaui/leadrouter/internal/events"
	"github.com/omegaui/leadrouter/internal/store"
)

type LeadsHandler struct {
	store      store.Store
	dispatcher *dispatch.Dispatcher
	events     events.Client
}

func NewLeadsHandler(s store.Store, d *dispatch.Dispatcher, ev events.Client) *LeadsHandler {
	return &LeadsHandler{store: s, dispatcher: d, events: ev}
}

type AssignRequest struct {
	LeadID        string      `json:"lead_id,omitempty"`
	Lead          *store.Lead `json:"lead,omitempty"`
	ForceOverflow bool        `json:"force_overflow,omitempty"`
}

// Assign runs the dispatcher for one lead. The lead can be referenced by id
// or supplied inline; an inline lead without an id is persisted first so the
// overflow pool always points at a real record.
func (h *LeadsHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var lead *store.Lead
	switch {
	case req.LeadID != "":
		id, err := uuid.Parse(req.LeadID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lead_id"})
			return
		}
		lead, err = h.store.GetLead(r.Context(), id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if lead == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
			return
		}
	case req.Lead != nil:
		lead = req.Lead
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lead or lead_id required"})
		return
	}

	if lead.State == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lead state required"})
		return
	}

	if lead.ID == uuid.Nil {
		lead.Status = store.LeadStatusNew
		if err := h.store.CreateLead(r.Context(), lead); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	result, err := h.dispatcher.Dispatch(r.Context(), lead, dispatch.Options{ForceOverflow: req.ForceOverflow})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type CreateLeadRequest struct {
	FullName     string `json:"full_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	State        string `json:"state"`
	AccidentType string `json:"accident_type"`
	Notes        string `json:"notes,omitempty"`
}

func (h *LeadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.State == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "state required"})
		return
	}

	lead := &store.Lead{
		FullName:     req.FullName,
		Phone:        req.Phone,
		State:        req.State,
		AccidentType: req.AccidentType,
		Notes:        req.Notes,
		Status:       store.LeadStatusNew,
	}
	if err := h.store.CreateLead(r.Context(), lead); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.events != nil {
		_ = h.events.Publish(events.SubjectLeadCreated(lead.ID.String()), events.LeadCreatedEvent{
			LeadID:       lead.ID.String(),
			State:        lead.State,
			AccidentType: lead.AccidentType,
			CreatedAt:    lead.CreatedAt,
		})
	}

	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.LeadFilter{
		State: r.URL.Query().Get("state"),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := store.LeadStatus(s)
		filter.Status = &status
	}

	leads, err := h.store.ListLeads(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if leads == nil {
		leads = []*store.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lead id"})
		return
	}

	lead, err := h.store.GetLead(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if lead == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
