package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/Sonusk4/consult-sub001/internal/repository"
)

type Repositories struct {
	Users         repo.Users
	Ledger        repo.Ledger
	Slots         repo.Slots
	Bookings      repo.Bookings
	PaymentOrders repo.PaymentOrders
	Messages      repo.Messages
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:         &usersRepo{pool},
		Ledger:        &ledgerRepo{pool},
		Slots:         &slotsRepo{pool},
		Bookings:      &bookingsRepo{pool},
		PaymentOrders: &paymentOrdersRepo{pool},
		Messages:      &messagesRepo{pool},
	}
}

// withTx runs fn inside a single serializable database transaction.
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
