package models

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleClient     = "client"
	RoleConsultant = "consultant"
	RoleAdmin      = "admin"
)

type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Role             string    `json:"role"`
	HourlyPriceCents int64     `json:"hourly_price_cents,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (u *User) Validate() error {
	if len(strings.TrimSpace(u.Username)) < 3 {
		return errors.New("username too short")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	switch u.Role {
	case "":
		u.Role = RoleClient
	case RoleClient, RoleConsultant, RoleAdmin:
	default:
		return errors.New("unknown role")
	}
	if u.Role == RoleConsultant && u.HourlyPriceCents < 0 {
		return errors.New("hourly price must be >= 0")
	}
	return nil
}
