// Package ledger owns wallet balances and the append-only transaction
// log. No other component mutates a balance.
package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Sonusk4/consult-sub001/internal/metrics"
	"github.com/Sonusk4/consult-sub001/internal/models"
	repo "github.com/Sonusk4/consult-sub001/internal/repository"
)

var errBadAmount = errors.New("amount must be > 0")

type Service struct {
	r repo.Ledger
}

func NewService(r repo.Ledger) *Service { return &Service{r: r} }

func (s *Service) Balance(ctx context.Context, ownerID string) (int64, error) {
	return s.r.Balance(ctx, ownerID)
}

func (s *Service) Credit(ctx context.Context, ownerID string, amount int64, kind models.TransactionKind, bookingID *string, desc string) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, errBadAmount
	}
	txn, err := s.r.Apply(ctx, models.Transaction{
		OwnerID:     ownerID,
		Kind:        kind,
		Amount:      amount,
		Description: desc,
		BookingID:   bookingID,
	})
	if err != nil {
		return models.Transaction{}, err
	}
	metrics.LedgerEntries.WithLabelValues(string(kind)).Inc()
	slog.Debug("ledger credit", "owner", ownerID, "kind", kind, "amount", amount)
	return txn, nil
}

func (s *Service) Debit(ctx context.Context, ownerID string, amount int64, bookingID *string, desc string) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, errBadAmount
	}
	txn, err := s.r.Apply(ctx, models.Transaction{
		OwnerID:     ownerID,
		Kind:        models.TxnDebit,
		Amount:      amount,
		Description: desc,
		BookingID:   bookingID,
	})
	if err != nil {
		return models.Transaction{}, err
	}
	metrics.LedgerEntries.WithLabelValues(string(models.TxnDebit)).Inc()
	slog.Debug("ledger debit", "owner", ownerID, "amount", amount)
	return txn, nil
}

func (s *Service) History(ctx context.Context, ownerID string, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.r.ListByOwner(ctx, ownerID, limit, offset)
}
