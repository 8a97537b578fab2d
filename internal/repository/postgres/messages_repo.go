package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sonusk4/consult-sub001/internal/models"
)

type messagesRepo struct{ pool *pgxpool.Pool }

func (r *messagesRepo) Create(ctx context.Context, m *models.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO messages(id, booking_id, sender_id, content)
		 VALUES($1,$2,$3,$4)
		 RETURNING created_at`,
		m.ID, m.BookingID, m.SenderID, m.Content,
	).Scan(&m.CreatedAt)
}

func (r *messagesRepo) ListByBooking(ctx context.Context, bookingID string, limit int) ([]models.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, booking_id, sender_id, content, created_at
		   FROM messages
		  WHERE booking_id=$1
		  ORDER BY created_at
		  LIMIT $2`,
		bookingID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.BookingID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *messagesRepo) CountByBooking(ctx context.Context, bookingID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM messages WHERE booking_id=$1`, bookingID,
	).Scan(&n)
	return n, err
}
