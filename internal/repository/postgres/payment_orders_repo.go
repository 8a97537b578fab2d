package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sonusk4/consult-sub001/internal/models"
)

type paymentOrdersRepo struct{ pool *pgxpool.Pool }

const orderCols = `external_order_id, owner_id, amount, bonus, status, created_at, updated_at`

func scanOrder(row pgx.Row) (models.PaymentOrder, error) {
	var o models.PaymentOrder
	err := row.Scan(&o.ExternalOrderID, &o.OwnerID, &o.Amount, &o.Bonus, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if isNoRows(err) {
		return models.PaymentOrder{}, models.ErrNotFound
	}
	return o, err
}

func (r *paymentOrdersRepo) Create(ctx context.Context, o models.PaymentOrder) (models.PaymentOrder, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payment_orders(external_order_id, owner_id, amount, bonus, status)
		 VALUES($1,$2,$3,$4,$5)
		 RETURNING created_at, updated_at`,
		o.ExternalOrderID, o.OwnerID, o.Amount, o.Bonus, models.OrderPending,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return models.PaymentOrder{}, err
	}
	o.Status = models.OrderPending
	return o, nil
}

func (r *paymentOrdersRepo) Get(ctx context.Context, externalOrderID string) (models.PaymentOrder, error) {
	return scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderCols+` FROM payment_orders WHERE external_order_id=$1`,
		externalOrderID))
}

// CompleteWithCredit is the exactly-once step of settlement: the
// conditional flip to COMPLETED and the wallet credit commit together,
// so a duplicate gateway callback finds the order already completed and
// never touches the ledger again.
func (r *paymentOrdersRepo) CompleteWithCredit(ctx context.Context, externalOrderID string, credit models.Transaction) (models.PaymentOrder, error) {
	var o models.PaymentOrder
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		o, err = scanOrder(tx.QueryRow(ctx,
			`UPDATE payment_orders SET status=$2, updated_at=now()
			  WHERE external_order_id=$1 AND status=$3
			  RETURNING `+orderCols,
			externalOrderID, models.OrderCompleted, models.OrderPending))
		if err != nil {
			return err
		}
		_, err = applyTxn(ctx, tx, credit)
		return err
	})
	if errors.Is(err, models.ErrNotFound) {
		cur, gerr := r.Get(ctx, externalOrderID)
		if gerr != nil {
			return models.PaymentOrder{}, gerr
		}
		return cur, models.ErrAlreadyProcessed
	}
	return o, err
}
