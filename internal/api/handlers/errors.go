package handlers

import (
	"errors"
	"net/http"

	"github.com/Sonusk4/consult-sub001/internal/api/httpx"
	"github.com/Sonusk4/consult-sub001/internal/models"
)

// writeDomainErr maps the closed failure set onto HTTP. Anything
// unrecognized is a storage/connectivity failure and surfaces as a
// generic 503; single bad requests never take the process down.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrSlotUnavailable):
		httpx.WriteError(w, http.StatusConflict, "slot_unavailable", "slot already reserved, pick another", nil)
	case errors.Is(err, models.ErrSlotReserved):
		httpx.WriteError(w, http.StatusConflict, "slot_reserved", "slot has an active booking", nil)
	case errors.Is(err, models.ErrInsufficientFunds):
		httpx.WriteError(w, http.StatusPaymentRequired, "insufficient_funds", "wallet balance too low", nil)
	case errors.Is(err, models.ErrInvalidTransition):
		httpx.WriteError(w, http.StatusConflict, "invalid_transition", "status transition not allowed", nil)
	case errors.Is(err, models.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "not allowed for this actor", nil)
	case errors.Is(err, models.ErrInvalidSignature):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_signature", "payment signature mismatch", nil)
	case errors.Is(err, models.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "resource not found", nil)
	default:
		httpx.WriteError(w, http.StatusServiceUnavailable, "unavailable", "service unavailable", nil)
	}
}
