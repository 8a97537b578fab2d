// Package booking drives a booking through its lifecycle, moving money
// on each transition that requires it. All monetary side effects commit
// atomically with the status change they belong to.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sonusk4/consult-sub001/internal/metrics"
	"github.com/Sonusk4/consult-sub001/internal/models"
	"github.com/Sonusk4/consult-sub001/internal/notify"
	repo "github.com/Sonusk4/consult-sub001/internal/repository"
	"github.com/Sonusk4/consult-sub001/internal/worker"
)

// CommissionRate is the platform's fixed share of every booking fee.
const CommissionRate = 0.10

// Broadcaster pushes a status-update event into the booking's realtime
// room. Delivery is fire-and-forget.
type Broadcaster interface {
	BookingStatus(b models.Booking)
}

type noopBroadcaster struct{}

func (noopBroadcaster) BookingStatus(models.Booking) {}

type Service struct {
	bookings repo.Bookings
	users    repo.Users
	bc       Broadcaster
	notifier notify.Notifier
	wp       *worker.Pool
}

func NewService(b repo.Bookings, u repo.Users, wp *worker.Pool) *Service {
	return &Service{
		bookings: b,
		users:    u,
		bc:       noopBroadcaster{},
		notifier: notify.Noop{},
		wp:       wp,
	}
}

// SetBroadcaster wires the realtime router in after construction; the
// hub needs the booking service for join authorization, so the two are
// connected in main.
func (s *Service) SetBroadcaster(bc Broadcaster) { s.bc = bc }

func (s *Service) SetNotifier(n notify.Notifier) { s.notifier = n }

// SplitFee returns the platform commission and the consultant's net
// share. The commission is rounded half-up; the net absorbs the
// remainder so the two always sum to the fee.
func SplitFee(fee int64) (commission, net int64) {
	commission = (fee*10 + 50) / 100
	return commission, fee - commission
}

// Create reserves the slot, charges the client the consultant's hourly
// fee and inserts the PENDING booking as one atomic unit. A lost slot
// race surfaces as ErrSlotUnavailable, a short wallet as
// ErrInsufficientFunds; neither leaves any partial state behind.
func (s *Service) Create(ctx context.Context, clientID, consultantID, slotID string) (models.Booking, error) {
	consultant, err := s.users.GetByID(ctx, consultantID)
	if err != nil {
		return models.Booking{}, fmt.Errorf("load consultant: %w", err)
	}
	if consultant.Role != models.RoleConsultant {
		return models.Booking{}, models.ErrForbidden
	}

	fee := consultant.HourlyPriceCents
	commission, net := SplitFee(fee)

	b := models.Booking{
		ClientID:      clientID,
		ConsultantID:  consultantID,
		SlotID:        slotID,
		ConsultantFee: fee,
		CommissionFee: commission,
		NetEarning:    net,
		IsPaid:        fee > 0,
		Status:        models.BookingPending,
	}

	var debit *models.Transaction
	if fee > 0 {
		debit = &models.Transaction{
			OwnerID:     clientID,
			Kind:        models.TxnDebit,
			Amount:      fee,
			Description: fmt.Sprintf("booking with %s", consultant.Username),
		}
	}
	if err := s.bookings.CreateWithPayment(ctx, &b, debit); err != nil {
		return models.Booking{}, err
	}

	metrics.BookingTransitions.WithLabelValues(string(models.BookingPending)).Inc()
	s.announce(b, "booking.created")
	return b, nil
}

// UpdateStatus performs the consultant-driven PENDING transitions and
// the administrative cancel. Completion has its own operation.
func (s *Service) UpdateStatus(ctx context.Context, bookingID, actorID, actorRole string, newStatus models.BookingStatus) (models.Booking, error) {
	cur, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}

	var out models.Booking
	switch newStatus {
	case models.BookingAccepted:
		if actorID != cur.ConsultantID {
			return models.Booking{}, models.ErrForbidden
		}
		out, err = s.bookings.Accept(ctx, bookingID)
	case models.BookingRejected:
		if actorID != cur.ConsultantID {
			return models.Booking{}, models.ErrForbidden
		}
		refund := models.Transaction{
			OwnerID:     cur.ClientID,
			Kind:        models.TxnCredit,
			Amount:      cur.ConsultantFee,
			Description: "refund: booking rejected",
		}
		if !cur.IsPaid {
			refund.Amount = 0
		}
		out, err = s.bookings.RejectWithRefund(ctx, bookingID, refund)
	case models.BookingCancelled:
		if actorRole != models.RoleAdmin {
			return models.Booking{}, models.ErrForbidden
		}
		out, err = s.bookings.Cancel(ctx, bookingID)
	default:
		return models.Booking{}, models.ErrInvalidTransition
	}
	if err != nil {
		return models.Booking{}, err
	}

	metrics.BookingTransitions.WithLabelValues(string(newStatus)).Inc()
	s.announce(out, "booking."+string(newStatus))
	return out, nil
}

// Complete records the finished call and pays the consultant: one
// COMMISSION audit row and one EARNING credit, exactly once. The second
// caller gets ErrAlreadyCompleted and no new transactions.
func (s *Service) Complete(ctx context.Context, bookingID, actorID string, durationMinutes int) (models.Booking, error) {
	cur, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if !cur.Participant(actorID) {
		return models.Booking{}, models.ErrForbidden
	}
	if durationMinutes < 0 {
		durationMinutes = 0
	}

	commission := models.Transaction{
		OwnerID:     cur.ConsultantID,
		Kind:        models.TxnCommission,
		Amount:      cur.CommissionFee,
		Description: "platform commission",
	}
	earning := models.Transaction{
		OwnerID:     cur.ConsultantID,
		Kind:        models.TxnEarning,
		Amount:      cur.NetEarning,
		Description: "consultation earning",
	}
	out, err := s.bookings.CompleteWithPayout(ctx, bookingID, durationMinutes, commission, earning)
	if err != nil {
		return out, err
	}

	metrics.BookingTransitions.WithLabelValues(string(models.BookingCompleted)).Inc()
	s.announce(out, "booking.completed")
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.bookings.ListByUser(ctx, userID, limit, offset)
}

// WindowState evaluates the booking's session window right now.
func (s *Service) WindowState(b models.Booking) WindowState {
	return StateAt(b.Day, b.TimeOfDay, time.Now().UTC())
}

func (s *Service) announce(b models.Booking, event string) {
	s.bc.BookingStatus(b)
	s.wp.Submit(func() {
		if err := s.notifier.Publish(context.Background(), event, b); err != nil {
			slog.Warn("notify publish", "event", event, "booking", b.ID, "err", err)
		}
	})
}
