package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Sonusk4/consult-sub001/internal/api/httpx"
	"github.com/Sonusk4/consult-sub001/internal/middleware"
	"github.com/Sonusk4/consult-sub001/internal/slots"
)

type SlotsHandler struct {
	Slots *slots.Registry
}

func NewSlotsHandler(s *slots.Registry) *SlotsHandler {
	return &SlotsHandler{Slots: s}
}

func (h *SlotsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	var req struct {
		Day       string `json:"day"`         // YYYY-MM-DD
		TimeOfDay string `json:"time_of_day"` // HH:MM
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	day, err := time.Parse("2006-01-02", req.Day)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "day must be YYYY-MM-DD", nil)
		return
	}
	slot, err := h.Slots.Create(r.Context(), id.UserID, day, req.TimeOfDay)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, slot)
}

// List returns a consultant's slots for one day so clients can pick a
// free one. Reserved slots are included with reserved=true.
func (h *SlotsHandler) List(w http.ResponseWriter, r *http.Request) {
	consultantID := chi.URLParam(r, "consultantID")
	day, err := time.Parse("2006-01-02", r.URL.Query().Get("day"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "day query must be YYYY-MM-DD", nil)
		return
	}
	out, err := h.Slots.List(r.Context(), consultantID, day)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *SlotsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	if err := h.Slots.Delete(r.Context(), id.UserID, chi.URLParam(r, "slotID")); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
