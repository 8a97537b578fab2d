package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Sonusk4/consult-sub001/internal/api/httpx"
	"github.com/Sonusk4/consult-sub001/internal/ledger"
	"github.com/Sonusk4/consult-sub001/internal/middleware"
	"github.com/Sonusk4/consult-sub001/internal/payments"
)

type WalletHandler struct {
	Ledger   *ledger.Service
	Payments *payments.Service
}

func NewWalletHandler(l *ledger.Service, p *payments.Service) *WalletHandler {
	return &WalletHandler{Ledger: l, Payments: p}
}

func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	bal, err := h.Ledger.Balance(r.Context(), id.UserID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"balance": bal})
}

func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	txns, err := h.Ledger.History(r.Context(), id.UserID, limit, offset)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, txns)
}

func (h *WalletHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())
	var req struct {
		Amount int64 `json:"amount"`
		Bonus  int64 `json:"bonus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "positive amount required", nil)
		return
	}
	order, err := h.Payments.InitiateTopUp(r.Context(), id.UserID, req.Amount, req.Bonus)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, order)
}
