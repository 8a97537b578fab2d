package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Sonusk4/consult-sub001/internal/api/httpx"
	"github.com/Sonusk4/consult-sub001/internal/booking"
	"github.com/Sonusk4/consult-sub001/internal/middleware"
	"github.com/Sonusk4/consult-sub001/internal/models"
	repo "github.com/Sonusk4/consult-sub001/internal/repository"
)

type BookingsHandler struct {
	Bookings *booking.Service
	Messages repo.Messages
}

func NewBookingsHandler(b *booking.Service, m repo.Messages) *BookingsHandler {
	return &BookingsHandler{Bookings: b, Messages: m}
}

func (h *BookingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	var req struct {
		ConsultantID string `json:"consultant_id"`
		SlotID       string `json:"slot_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConsultantID == "" || req.SlotID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "consultant_id and slot_id required", nil)
		return
	}
	b, err := h.Bookings.Create(r.Context(), id.UserID, req.ConsultantID, req.SlotID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

func (h *BookingsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "status required", nil)
		return
	}
	b, err := h.Bookings.UpdateStatus(r.Context(), chi.URLParam(r, "bookingID"),
		id.UserID, id.Role, models.BookingStatus(req.Status))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BookingsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	var req struct {
		DurationMinutes int `json:"duration_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	b, err := h.Bookings.Complete(r.Context(), chi.URLParam(r, "bookingID"), id.UserID, req.DurationMinutes)
	if err != nil {
		// Replays of an already-settled completion are not failures.
		if errors.Is(err, models.ErrAlreadyCompleted) {
			httpx.WriteJSON(w, http.StatusOK, b)
			return
		}
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BookingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	b, err := h.Bookings.Get(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if !b.Participant(id.UserID) && id.Role != models.RoleAdmin {
		writeDomainErr(w, models.ErrForbidden)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"booking": b,
		"window":  h.Bookings.WindowState(b),
	})
}

func (h *BookingsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	out, err := h.Bookings.ListByUser(r.Context(), id.UserID, limit, offset)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// MessageHistory returns the persisted chat log for a booking the
// caller participates in. Live delivery happens over the websocket.
func (h *BookingsHandler) MessageHistory(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	bookingID := chi.URLParam(r, "bookingID")
	b, err := h.Bookings.Get(r.Context(), bookingID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if !b.Participant(id.UserID) && id.Role != models.RoleAdmin {
		writeDomainErr(w, models.ErrForbidden)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	msgs, err := h.Messages.ListByBooking(r.Context(), bookingID, limit)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, msgs)
}
