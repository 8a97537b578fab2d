package models

import "time"

// Wallet balances are kept in minor units (cents). A wallet is created
// lazily the first time its owner is charged or credited and is never
// allowed to go negative.
type Wallet struct {
	OwnerID   string    `json:"owner_id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}
