package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Sonusk4/consult-sub001/internal/api/httpx"
	"github.com/Sonusk4/consult-sub001/internal/payments"
)

type PaymentsHandler struct {
	Payments *payments.Service
}

func NewPaymentsHandler(p *payments.Service) *PaymentsHandler {
	return &PaymentsHandler{Payments: p}
}

type callbackReq struct {
	ExternalOrderID   string `json:"external_order_id"`
	ExternalPaymentID string `json:"external_payment_id"`
	Signature         string `json:"signature"`
	Amount            int64  `json:"amount"`
}

// Callback is the gateway-facing settlement endpoint. It is
// unauthenticated: the recomputed signature is the only trust boundary.
func (h *PaymentsHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var req callbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExternalOrderID == "" || req.ExternalPaymentID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "order and payment ids required", nil)
		return
	}
	res, err := h.Payments.Settle(r.Context(), req.ExternalOrderID, req.ExternalPaymentID, req.Signature, req.Amount)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	// Duplicates and orphans are success-shaped so gateway retries stop.
	httpx.WriteJSON(w, http.StatusOK, res)
}
