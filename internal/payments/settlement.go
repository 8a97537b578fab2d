// Package payments applies externally-confirmed payments to wallets
// exactly once per gateway order id.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Sonusk4/consult-sub001/internal/metrics"
	"github.com/Sonusk4/consult-sub001/internal/models"
	"github.com/Sonusk4/consult-sub001/internal/notify"
	repo "github.com/Sonusk4/consult-sub001/internal/repository"
	"github.com/Sonusk4/consult-sub001/internal/worker"
)

type SettlementCode string

const (
	// SettlementApplied: first confirmation for this order; wallet credited.
	SettlementApplied SettlementCode = "APPLIED"
	// SettlementAlreadyProcessed: duplicate callback; nothing changed.
	// Success-shaped so gateway retries stay safe.
	SettlementAlreadyProcessed SettlementCode = "ALREADY_PROCESSED"
	// SettlementOrphaned: signature checks out but no order matches.
	// Surfaced for reconciliation, never applied.
	SettlementOrphaned SettlementCode = "ORPHANED_BUT_VERIFIED"
)

type SettlementResult struct {
	Code  SettlementCode      `json:"code"`
	Order models.PaymentOrder `json:"order,omitempty"`
}

type Service struct {
	orders   repo.PaymentOrders
	secret   string
	notifier notify.Notifier
	wp       *worker.Pool
}

func NewService(orders repo.PaymentOrders, webhookSecret string, wp *worker.Pool) *Service {
	return &Service{orders: orders, secret: webhookSecret, notifier: notify.Noop{}, wp: wp}
}

func (s *Service) SetNotifier(n notify.Notifier) { s.notifier = n }

// InitiateTopUp registers a PENDING order before the client is sent to
// the gateway; the later callback settles against it.
func (s *Service) InitiateTopUp(ctx context.Context, ownerID string, amount, bonus int64) (models.PaymentOrder, error) {
	if amount <= 0 {
		return models.PaymentOrder{}, errors.New("amount must be > 0")
	}
	if bonus < 0 {
		return models.PaymentOrder{}, errors.New("bonus must be >= 0")
	}
	return s.orders.Create(ctx, models.PaymentOrder{
		ExternalOrderID: "order_" + uuid.NewString(),
		OwnerID:         ownerID,
		Amount:          amount,
		Bonus:           bonus,
	})
}

// Settle validates the gateway callback and applies it at most once.
// Safe to call an unbounded number of times with the same arguments:
// only the first call moves money.
func (s *Service) Settle(ctx context.Context, externalOrderID, externalPaymentID, signature string, claimedAmount int64) (SettlementResult, error) {
	if !VerifySignature(externalOrderID, externalPaymentID, s.secret, signature) {
		metrics.SettlementsTotal.WithLabelValues("rejected").Inc()
		slog.Warn("settlement rejected: bad signature", "order", externalOrderID)
		return SettlementResult{}, models.ErrInvalidSignature
	}

	order, err := s.orders.Get(ctx, externalOrderID)
	if errors.Is(err, models.ErrNotFound) {
		// Verified but unknown: log loudly, leave reconciliation to the operator.
		metrics.SettlementsTotal.WithLabelValues("orphaned").Inc()
		slog.Error("settlement orphaned: no matching order",
			"order", externalOrderID, "payment", externalPaymentID, "claimed_amount", claimedAmount)
		return SettlementResult{Code: SettlementOrphaned}, nil
	}
	if err != nil {
		return SettlementResult{}, err
	}

	credit := models.Transaction{
		OwnerID:     order.OwnerID,
		Kind:        models.TxnCredit,
		Amount:      order.Amount + order.Bonus,
		Description: fmt.Sprintf("wallet top-up, gateway order %s payment %s", externalOrderID, externalPaymentID),
	}
	completed, err := s.orders.CompleteWithCredit(ctx, externalOrderID, credit)
	if errors.Is(err, models.ErrAlreadyProcessed) {
		metrics.SettlementsTotal.WithLabelValues("duplicate").Inc()
		return SettlementResult{Code: SettlementAlreadyProcessed, Order: completed}, nil
	}
	if err != nil {
		return SettlementResult{}, err
	}

	metrics.SettlementsTotal.WithLabelValues("applied").Inc()
	slog.Info("settlement applied", "order", externalOrderID, "owner", completed.OwnerID, "amount", credit.Amount)

	// Receipt goes out after commit; a broken mailer cannot undo money.
	s.wp.Submit(func() {
		if err := s.notifier.Publish(context.Background(), "payment.settled", completed); err != nil {
			slog.Warn("notify publish", "event", "payment.settled", "order", completed.ExternalOrderID, "err", err)
		}
	})
	return SettlementResult{Code: SettlementApplied, Order: completed}, nil
}
