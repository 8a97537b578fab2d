package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Sonusk4/consult-sub001/internal/auth"
	"github.com/Sonusk4/consult-sub001/internal/models"
	repo "github.com/Sonusk4/consult-sub001/internal/repository"
)

type UserService struct {
	r repo.Users
}

func NewUserService(r repo.Users) *UserService { return &UserService{r: r} }

func (s *UserService) Register(ctx context.Context, username, email, password, role string, hourlyPriceCents int64) (models.User, error) {
	u := models.User{
		Username:         strings.TrimSpace(username),
		Email:            strings.ToLower(strings.TrimSpace(email)),
		Role:             role,
		HourlyPriceCents: hourlyPriceCents,
	}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	if len(password) < 8 {
		return models.User{}, errors.New("password too short")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	return s.r.Create(ctx, u.Username, u.Email, hash, u.Role, u.HourlyPriceCents)
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.r.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return models.User{}, errors.New("invalid credentials")
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return models.User{}, errors.New("invalid credentials")
	}
	return u, nil
}

// Resolve finds the account for an externally-verified identity with a
// fixed precedence: id first, then email, then a fresh account. This is
// the single identity-linking path; endpoints must not re-implement it.
func (s *UserService) Resolve(ctx context.Context, userID, email, username string) (models.User, error) {
	if userID != "" {
		if u, err := s.r.GetByID(ctx, userID); err == nil {
			return u, nil
		} else if !errors.Is(err, models.ErrNotFound) {
			return models.User{}, err
		}
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if u, err := s.r.GetByEmail(ctx, email); err == nil {
		return u, nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.User{}, err
	}
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}
	return s.r.Create(ctx, username, email, "", models.RoleClient, 0)
}

func (s *UserService) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.r.GetByID(ctx, id)
}

func (s *UserService) ListConsultants(ctx context.Context) ([]models.User, error) {
	return s.r.ListConsultants(ctx)
}
