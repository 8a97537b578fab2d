package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sonusk4/consult-sub001/internal/models"
)

type ledgerRepo struct{ pool *pgxpool.Pool }

func (r *ledgerRepo) GetOrCreateWallet(ctx context.Context, ownerID string) (models.Wallet, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO wallets(owner_id, balance, updated_at)
		 VALUES($1, 0, now())
		 ON CONFLICT (owner_id) DO NOTHING`,
		ownerID,
	)
	if err != nil {
		return models.Wallet{}, err
	}
	var w models.Wallet
	err = r.pool.QueryRow(ctx,
		`SELECT owner_id, balance, updated_at FROM wallets WHERE owner_id=$1`,
		ownerID,
	).Scan(&w.OwnerID, &w.Balance, &w.UpdatedAt)
	return w, err
}

func (r *ledgerRepo) Balance(ctx context.Context, ownerID string) (int64, error) {
	w, err := r.GetOrCreateWallet(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

func (r *ledgerRepo) Apply(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	var out models.Transaction
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		out, err = applyTxn(ctx, tx, txn)
		return err
	})
	return out, err
}

func (r *ledgerRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, kind, amount, description, booking_id, status, created_at
		   FROM transactions
		  WHERE owner_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Kind, &t.Amount, &t.Description, &t.BookingID, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// applyTxn commits one ledger entry inside the caller's transaction: the
// wallet delta and the log row persist together or not at all. Debits
// are a conditional update so a concurrent drain of the same wallet can
// never push the balance negative.
func applyTxn(ctx context.Context, tx pgx.Tx, txn models.Transaction) (models.Transaction, error) {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	txn.Status = models.TxnSuccess

	if _, err := tx.Exec(ctx,
		`INSERT INTO wallets(owner_id, balance, updated_at)
		 VALUES($1, 0, now())
		 ON CONFLICT (owner_id) DO NOTHING`,
		txn.OwnerID,
	); err != nil {
		return models.Transaction{}, err
	}

	switch delta := txn.BalanceDelta(); {
	case delta < 0:
		ct, err := tx.Exec(ctx,
			`UPDATE wallets
			    SET balance = balance + $2, updated_at = now()
			  WHERE owner_id = $1 AND balance >= $3`,
			txn.OwnerID, delta, txn.Amount,
		)
		if err != nil {
			return models.Transaction{}, err
		}
		if ct.RowsAffected() == 0 {
			return models.Transaction{}, models.ErrInsufficientFunds
		}
	case delta > 0:
		if _, err := tx.Exec(ctx,
			`UPDATE wallets
			    SET balance = balance + $2, updated_at = now()
			  WHERE owner_id = $1`,
			txn.OwnerID, delta,
		); err != nil {
			return models.Transaction{}, err
		}
	default:
		// commission audit rows carry no balance effect
	}

	err := tx.QueryRow(ctx,
		`INSERT INTO transactions(id, owner_id, kind, amount, description, booking_id, status)
		 VALUES($1,$2,$3,$4,$5,$6,$7)
		 RETURNING created_at`,
		txn.ID, txn.OwnerID, txn.Kind, txn.Amount, txn.Description, txn.BookingID, txn.Status,
	).Scan(&txn.CreatedAt)
	if err != nil {
		return models.Transaction{}, err
	}
	return txn, nil
}

func isNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }
