package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sonusk4/consult-sub001/internal/models"
)

type bookingsRepo struct{ pool *pgxpool.Pool }

const bookingCols = `id, client_id, consultant_id, slot_id, day, time_of_day,
	consultant_fee, commission_fee, net_earning, is_paid, status,
	call_completed, call_duration_minutes, created_at, updated_at`

func scanBooking(row pgx.Row) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.ClientID, &b.ConsultantID, &b.SlotID, &b.Day, &b.TimeOfDay,
		&b.ConsultantFee, &b.CommissionFee, &b.NetEarning, &b.IsPaid, &b.Status,
		&b.CallCompleted, &b.CallDurationMinutes, &b.CreatedAt, &b.UpdatedAt)
	if isNoRows(err) {
		return models.Booking{}, models.ErrNotFound
	}
	return b, err
}

func (r *bookingsRepo) CreateWithPayment(ctx context.Context, b *models.Booking, debit *models.Transaction) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		// Slot CAS first: the loser of a race rolls back before any money
		// moves. The winning update also hands back the slot's calendar
		// position for the booking row.
		var slotConsultant string
		err := tx.QueryRow(ctx,
			`UPDATE availability_slots SET reserved=true
			  WHERE id=$1 AND reserved=false
			  RETURNING consultant_id, day, time_of_day`,
			b.SlotID,
		).Scan(&slotConsultant, &b.Day, &b.TimeOfDay)
		if isNoRows(err) {
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM availability_slots WHERE id=$1)`, b.SlotID,
			).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return models.ErrNotFound
			}
			return models.ErrSlotUnavailable
		}
		if err != nil {
			return err
		}
		if slotConsultant != b.ConsultantID {
			return models.ErrSlotUnavailable
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO bookings(id, client_id, consultant_id, slot_id, day, time_of_day,
			   consultant_fee, commission_fee, net_earning, is_paid, status)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			 RETURNING created_at, updated_at`,
			b.ID, b.ClientID, b.ConsultantID, b.SlotID, b.Day, b.TimeOfDay,
			b.ConsultantFee, b.CommissionFee, b.NetEarning, b.IsPaid, b.Status,
		).Scan(&b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return err
		}

		if debit != nil {
			debit.BookingID = &b.ID
			if _, err := applyTxn(ctx, tx, *debit); err != nil {
				// ErrInsufficientFunds rolls the reservation back with the tx.
				return err
			}
		}
		return nil
	})
}

func (r *bookingsRepo) GetByID(ctx context.Context, id string) (models.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id=$1`, id))
}

func (r *bookingsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Booking, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookingCols+` FROM bookings
		  WHERE client_id=$1 OR consultant_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *bookingsRepo) Accept(ctx context.Context, id string) (models.Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx,
		`UPDATE bookings SET status=$2, updated_at=now()
		  WHERE id=$1 AND status=$3
		  RETURNING `+bookingCols,
		id, models.BookingAccepted, models.BookingPending))
	if errors.Is(err, models.ErrNotFound) {
		return r.transitionConflict(ctx, id)
	}
	return b, err
}

func (r *bookingsRepo) RejectWithRefund(ctx context.Context, id string, refund models.Transaction) (models.Booking, error) {
	var b models.Booking
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		b, err = scanBooking(tx.QueryRow(ctx,
			`UPDATE bookings SET status=$2, updated_at=now()
			  WHERE id=$1 AND status=$3
			  RETURNING `+bookingCols,
			id, models.BookingRejected, models.BookingPending))
		if err != nil {
			return err
		}
		if refund.Amount > 0 {
			refund.BookingID = &b.ID
			if _, err := applyTxn(ctx, tx, refund); err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx,
			`UPDATE availability_slots SET reserved=false WHERE id=$1`, b.SlotID)
		return err
	})
	if errors.Is(err, models.ErrNotFound) {
		return r.transitionConflict(ctx, id)
	}
	return b, err
}

func (r *bookingsRepo) Cancel(ctx context.Context, id string) (models.Booking, error) {
	var b models.Booking
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		b, err = scanBooking(tx.QueryRow(ctx,
			`UPDATE bookings SET status=$2, updated_at=now()
			  WHERE id=$1 AND status IN ($3, $4)
			  RETURNING `+bookingCols,
			id, models.BookingCancelled, models.BookingPending, models.BookingAccepted))
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE availability_slots SET reserved=false WHERE id=$1`, b.SlotID)
		return err
	})
	if errors.Is(err, models.ErrNotFound) {
		return r.transitionConflict(ctx, id)
	}
	return b, err
}

func (r *bookingsRepo) CompleteWithPayout(ctx context.Context, id string, durationMinutes int, commission, earning models.Transaction) (models.Booking, error) {
	var b models.Booking
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		b, err = scanBooking(tx.QueryRow(ctx,
			`UPDATE bookings
			    SET status=$2, call_completed=true, call_duration_minutes=$3, updated_at=now()
			  WHERE id=$1 AND status=$4 AND call_completed=false
			  RETURNING `+bookingCols,
			id, models.BookingCompleted, durationMinutes, models.BookingAccepted))
		if err != nil {
			return err
		}
		commission.BookingID, earning.BookingID = &b.ID, &b.ID
		if commission.Amount > 0 {
			if _, err := applyTxn(ctx, tx, commission); err != nil {
				return err
			}
		}
		if earning.Amount > 0 {
			if _, err := applyTxn(ctx, tx, earning); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, models.ErrNotFound) {
		cur, gerr := r.GetByID(ctx, id)
		if gerr != nil {
			return models.Booking{}, gerr
		}
		if cur.CallCompleted || cur.Status == models.BookingCompleted {
			return cur, models.ErrAlreadyCompleted
		}
		return cur, models.ErrInvalidTransition
	}
	return b, err
}

// transitionConflict distinguishes a missing booking from one that is
// simply not in the state the conditional update required.
func (r *bookingsRepo) transitionConflict(ctx context.Context, id string) (models.Booking, error) {
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	return cur, models.ErrInvalidTransition
}
