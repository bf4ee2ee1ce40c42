package api

import (
	"net/http"
	"strconv"

	"github.com/omegaui/leadrouter/internal/store"
)

type OverflowHandler struct {
	store store.Store
}

func NewOverflowHandler(s store.Store) *OverflowHandler {
	return &OverflowHandler{store: s}
}

func (h *OverflowHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.store.ListOverflowEntries(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []*store.OverflowEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
