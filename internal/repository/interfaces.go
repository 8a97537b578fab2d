package repository

import (
	"context"
	"time"

	"github.com/Sonusk4/consult-sub001/internal/models"
)

type Users interface {
	Create(ctx context.Context, username, email, passwordHash, role string, hourlyPriceCents int64) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	ListConsultants(ctx context.Context) ([]models.User, error)
}

// Ledger is the only write path to wallet balances. Apply commits the
// balance change and the transaction-log row as one durable unit; a
// debit that would take the balance negative fails with
// models.ErrInsufficientFunds and writes nothing.
type Ledger interface {
	GetOrCreateWallet(ctx context.Context, ownerID string) (models.Wallet, error)
	Balance(ctx context.Context, ownerID string) (int64, error)
	Apply(ctx context.Context, txn models.Transaction) (models.Transaction, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.Transaction, error)
}

type Slots interface {
	Create(ctx context.Context, s models.AvailabilitySlot) (models.AvailabilitySlot, error)
	GetByID(ctx context.Context, id string) (models.AvailabilitySlot, error)
	ListByConsultant(ctx context.Context, consultantID string, day time.Time) ([]models.AvailabilitySlot, error)
	// Reserve is a compare-and-set on the reserved flag: exactly one of
	// N concurrent callers wins, the rest get models.ErrSlotUnavailable.
	Reserve(ctx context.Context, id string) error
	// Release is a no-op when the slot is already free.
	Release(ctx context.Context, id string) error
	// Delete refuses with models.ErrSlotReserved while the slot is booked.
	Delete(ctx context.Context, id string) error
}

// Bookings composes the multi-row atomic units of the lifecycle. Each
// mutating method runs as a single storage transaction so a crash in
// the middle is never observable.
type Bookings interface {
	// CreateWithPayment reserves the slot (CAS), debits the client and
	// inserts the booking plus its DEBIT log row atomically. The debit
	// is skipped when debit is nil (zero-fee booking).
	CreateWithPayment(ctx context.Context, b *models.Booking, debit *models.Transaction) error
	GetByID(ctx context.Context, id string) (models.Booking, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Booking, error)
	// Accept flips PENDING -> ACCEPTED; models.ErrInvalidTransition if
	// the booking is in any other state.
	Accept(ctx context.Context, id string) (models.Booking, error)
	// RejectWithRefund flips PENDING -> REJECTED, credits the refund and
	// releases the slot in one transaction.
	RejectWithRefund(ctx context.Context, id string, refund models.Transaction) (models.Booking, error)
	Cancel(ctx context.Context, id string) (models.Booking, error)
	// CompleteWithPayout guards on status ACCEPTED and call_completed
	// false (second call gets models.ErrAlreadyCompleted), then records
	// the commission audit row and the earning credit.
	CompleteWithPayout(ctx context.Context, id string, durationMinutes int, commission, earning models.Transaction) (models.Booking, error)
}

type PaymentOrders interface {
	Create(ctx context.Context, o models.PaymentOrder) (models.PaymentOrder, error)
	Get(ctx context.Context, externalOrderID string) (models.PaymentOrder, error)
	// CompleteWithCredit flips the order PENDING -> COMPLETED and applies
	// the wallet credit atomically. An already-completed order returns
	// models.ErrAlreadyProcessed without touching the ledger; a missing
	// order returns models.ErrNotFound.
	CompleteWithCredit(ctx context.Context, externalOrderID string, credit models.Transaction) (models.PaymentOrder, error)
}

type Messages interface {
	Create(ctx context.Context, m *models.Message) error
	ListByBooking(ctx context.Context, bookingID string, limit int) ([]models.Message, error)
	CountByBooking(ctx context.Context, bookingID string) (int, error)
}
