package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sonusk4/consult-sub001/internal/models"
)

type slotsRepo struct{ pool *pgxpool.Pool }

func (r *slotsRepo) Create(ctx context.Context, s models.AvailabilitySlot) (models.AvailabilitySlot, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO availability_slots(id, consultant_id, day, time_of_day, reserved)
		 VALUES($1,$2,$3,$4,false)
		 RETURNING created_at`,
		s.ID, s.ConsultantID, s.Day, s.TimeOfDay,
	).Scan(&s.CreatedAt)
	if err != nil {
		return models.AvailabilitySlot{}, err
	}
	s.Reserved = false
	return s, nil
}

func (r *slotsRepo) GetByID(ctx context.Context, id string) (models.AvailabilitySlot, error) {
	var s models.AvailabilitySlot
	err := r.pool.QueryRow(ctx,
		`SELECT id, consultant_id, day, time_of_day, reserved, created_at
		   FROM availability_slots WHERE id=$1`,
		id,
	).Scan(&s.ID, &s.ConsultantID, &s.Day, &s.TimeOfDay, &s.Reserved, &s.CreatedAt)
	if isNoRows(err) {
		return models.AvailabilitySlot{}, models.ErrNotFound
	}
	return s, err
}

func (r *slotsRepo) ListByConsultant(ctx context.Context, consultantID string, day time.Time) ([]models.AvailabilitySlot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, consultant_id, day, time_of_day, reserved, created_at
		   FROM availability_slots
		  WHERE consultant_id=$1 AND day=$2
		  ORDER BY time_of_day`,
		consultantID, day,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AvailabilitySlot
	for rows.Next() {
		var s models.AvailabilitySlot
		if err := rows.Scan(&s.ID, &s.ConsultantID, &s.Day, &s.TimeOfDay, &s.Reserved, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Reserve wins or loses on a single conditional update; two concurrent
// callers can never both see reserved=false.
func (r *slotsRepo) Reserve(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE availability_slots SET reserved=true WHERE id=$1 AND reserved=false`,
		id,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return models.ErrSlotUnavailable
	}
	return nil
}

func (r *slotsRepo) Release(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE availability_slots SET reserved=false WHERE id=$1 AND reserved=true`,
		id,
	)
	return err
}

func (r *slotsRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM availability_slots WHERE id=$1 AND reserved=false`,
		id,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return models.ErrSlotReserved
	}
	return nil
}
