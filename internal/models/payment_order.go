package models

import "time"

type PaymentOrderStatus string

const (
	OrderPending   PaymentOrderStatus = "PENDING"
	OrderCompleted PaymentOrderStatus = "COMPLETED"
)

// PaymentOrder tracks a wallet top-up initiated against the external
// payment gateway. ExternalOrderID is the gateway's order reference and
// the idempotency key for settlement: the order moves to COMPLETED at
// most once no matter how many times the gateway retries its callback.
type PaymentOrder struct {
	ExternalOrderID string             `json:"external_order_id"`
	OwnerID         string             `json:"owner_id"`
	Amount          int64              `json:"amount"`
	Bonus           int64              `json:"bonus"`
	Status          PaymentOrderStatus `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}
