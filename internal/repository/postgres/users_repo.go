package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sonusk4/consult-sub001/internal/models"
)

type usersRepo struct{ pool *pgxpool.Pool }

const userCols = `id, username, email, password_hash, role, hourly_price_cents, created_at, updated_at`

func (r *usersRepo) Create(ctx context.Context, username, email, hash, role string, hourlyPriceCents int64) (models.User, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users(id, username, email, password_hash, role, hourly_price_cents)
		 VALUES($1,$2,$3,$4,$5,$6)`,
		id, username, email, hash, role, hourlyPriceCents,
	)
	if err != nil {
		return models.User{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.HourlyPriceCents, &u.CreatedAt, &u.UpdatedAt)
	if isNoRows(err) {
		return models.User{}, models.ErrNotFound
	}
	return u, err
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE email=$1`, email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.HourlyPriceCents, &u.CreatedAt, &u.UpdatedAt)
	if isNoRows(err) {
		return models.User{}, models.ErrNotFound
	}
	return u, err
}

func (r *usersRepo) ListConsultants(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userCols+` FROM users WHERE role=$1 ORDER BY created_at DESC LIMIT 100`,
		models.RoleConsultant,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.HourlyPriceCents, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
