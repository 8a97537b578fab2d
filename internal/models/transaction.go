package models

import "time"

type TransactionKind string

const (
	TxnCredit     TransactionKind = "CREDIT"
	TxnDebit      TransactionKind = "DEBIT"
	TxnCommission TransactionKind = "COMMISSION"
	TxnEarning    TransactionKind = "EARNING"
)

type TransactionStatus string

// Failed operations are rejected before anything is written, so the log
// only ever contains successful entries.
const TxnSuccess TransactionStatus = "SUCCESS"

type Transaction struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"owner_id"`
	Kind        TransactionKind   `json:"kind"`
	Amount      int64             `json:"amount"`
	Description string            `json:"description"`
	BookingID   *string           `json:"booking_id,omitempty"`
	Status      TransactionStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// BalanceDelta is the signed effect of this transaction on the owner's
// wallet. Commission entries are audit rows recorded against the
// consultant's ledger and carry no balance effect.
func (t Transaction) BalanceDelta() int64 {
	switch t.Kind {
	case TxnCredit, TxnEarning:
		return t.Amount
	case TxnDebit:
		return -t.Amount
	default:
		return 0
	}
}
