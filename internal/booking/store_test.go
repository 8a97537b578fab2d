package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sonusk4/consult-sub001/internal/models"
)

// memStore is an in-memory stand-in for the postgres repositories. It
// honors the same contracts: conditional slot reservation, balance
// floor at zero, and all-or-nothing multi-row units. The repo
// interfaces are implemented by thin views over the shared store.
type memStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	balances map[string]int64
	txns     []models.Transaction
	slots    map[string]*models.AvailabilitySlot
	bookings map[string]*models.Booking
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]models.User),
		balances: make(map[string]int64),
		slots:    make(map[string]*models.AvailabilitySlot),
		bookings: make(map[string]*models.Booking),
	}
}

func (m *memStore) addUser(role string, fee int64) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := models.User{
		ID:               uuid.NewString(),
		Username:         fmt.Sprintf("%s%d", role, len(m.users)),
		Email:            fmt.Sprintf("u%d@test.local", len(m.users)),
		Role:             role,
		HourlyPriceCents: fee,
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addSlot(consultantID string) models.AvailabilitySlot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := models.AvailabilitySlot{
		ID:           uuid.NewString(),
		ConsultantID: consultantID,
		Day:          time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		TimeOfDay:    "14:00",
	}
	m.slots[s.ID] = &s
	return s
}

func (m *memStore) setBalance(ownerID string, v int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[ownerID] = v
}

func (m *memStore) balance(ownerID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[ownerID]
}

func (m *memStore) txnsFor(ownerID string) []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, t := range m.txns {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out
}

func (m *memStore) slotReserved(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[id].Reserved
}

// apply mirrors the ledger repository: a debit below the floor fails
// and writes nothing. Callers hold m.mu.
func (m *memStore) apply(t models.Transaction) error {
	delta := t.BalanceDelta()
	if delta < 0 && m.balances[t.OwnerID]+delta < 0 {
		return models.ErrInsufficientFunds
	}
	m.balances[t.OwnerID] += delta
	t.ID = uuid.NewString()
	t.Status = models.TxnSuccess
	m.txns = append(m.txns, t)
	return nil
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(ctx context.Context, username, email, passwordHash, role string, hourlyPriceCents int64) (models.User, error) {
	u := r.s.addUser(role, hourlyPriceCents)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Username, u.Email, u.PasswordHash = username, email, passwordHash
	r.s.users[u.ID] = u
	return u, nil
}

func (r memUsers) GetByID(ctx context.Context, id string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

func (r memUsers) GetByEmail(ctx context.Context, email string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (r memUsers) ListConsultants(ctx context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.User
	for _, u := range r.s.users {
		if u.Role == models.RoleConsultant {
			out = append(out, u)
		}
	}
	return out, nil
}

type memBookings struct{ s *memStore }

func (r memBookings) CreateWithPayment(ctx context.Context, b *models.Booking, debit *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sl, ok := r.s.slots[b.SlotID]
	if !ok {
		return models.ErrNotFound
	}
	if sl.Reserved || sl.ConsultantID != b.ConsultantID {
		return models.ErrSlotUnavailable
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if debit != nil {
		debit.BookingID = &b.ID
		if err := r.s.apply(*debit); err != nil {
			return err
		}
	}
	sl.Reserved = true
	b.Day, b.TimeOfDay = sl.Day, sl.TimeOfDay
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.s.bookings[b.ID] = &cp
	return nil
}

func (r memBookings) GetByID(ctx context.Context, id string) (models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return models.Booking{}, models.ErrNotFound
	}
	return *b, nil
}

func (r memBookings) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Booking
	for _, b := range r.s.bookings {
		if b.ClientID == userID || b.ConsultantID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r memBookings) Accept(ctx context.Context, id string) (models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return models.Booking{}, models.ErrNotFound
	}
	if b.Status != models.BookingPending {
		return *b, models.ErrInvalidTransition
	}
	b.Status = models.BookingAccepted
	return *b, nil
}

func (r memBookings) RejectWithRefund(ctx context.Context, id string, refund models.Transaction) (models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return models.Booking{}, models.ErrNotFound
	}
	if b.Status != models.BookingPending {
		return *b, models.ErrInvalidTransition
	}
	if refund.Amount > 0 {
		refund.BookingID = &b.ID
		if err := r.s.apply(refund); err != nil {
			return models.Booking{}, err
		}
	}
	b.Status = models.BookingRejected
	r.s.slots[b.SlotID].Reserved = false
	return *b, nil
}

func (r memBookings) Cancel(ctx context.Context, id string) (models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return models.Booking{}, models.ErrNotFound
	}
	if b.Status != models.BookingPending && b.Status != models.BookingAccepted {
		return *b, models.ErrInvalidTransition
	}
	b.Status = models.BookingCancelled
	r.s.slots[b.SlotID].Reserved = false
	return *b, nil
}

func (r memBookings) CompleteWithPayout(ctx context.Context, id string, durationMinutes int, commission, earning models.Transaction) (models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return models.Booking{}, models.ErrNotFound
	}
	if b.CallCompleted || b.Status == models.BookingCompleted {
		return *b, models.ErrAlreadyCompleted
	}
	if b.Status != models.BookingAccepted {
		return *b, models.ErrInvalidTransition
	}
	commission.BookingID, earning.BookingID = &b.ID, &b.ID
	if commission.Amount > 0 {
		if err := r.s.apply(commission); err != nil {
			return models.Booking{}, err
		}
	}
	if earning.Amount > 0 {
		if err := r.s.apply(earning); err != nil {
			return models.Booking{}, err
		}
	}
	b.Status = models.BookingCompleted
	b.CallCompleted = true
	b.CallDurationMinutes = durationMinutes
	return *b, nil
}
