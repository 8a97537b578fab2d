package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sonusk4/consult-sub001/internal/models"
	"github.com/Sonusk4/consult-sub001/internal/repository/postgres"
)

// fakeStore backs the whole repository surface in memory with the same
// contracts the postgres layer guarantees, so the router can be tested
// end to end without a database.
type fakeStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	balances map[string]int64
	txns     []models.Transaction
	slots    map[string]*models.AvailabilitySlot
	bookings map[string]*models.Booking
	orders   map[string]*models.PaymentOrder
	messages []models.Message
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]models.User),
		balances: make(map[string]int64),
		slots:    make(map[string]*models.AvailabilitySlot),
		bookings: make(map[string]*models.Booking),
		orders:   make(map[string]*models.PaymentOrder),
	}
}

func (f *fakeStore) repos() postgres.Repositories {
	return postgres.Repositories{
		Users:         fakeUsers{f},
		Ledger:        fakeLedger{f},
		Slots:         fakeSlots{f},
		Bookings:      fakeBookings{f},
		PaymentOrders: fakeOrders{f},
		Messages:      fakeMessages{f},
	}
}

// apply enforces the non-negative balance floor; callers hold f.mu.
func (f *fakeStore) apply(t models.Transaction) (models.Transaction, error) {
	delta := t.BalanceDelta()
	if delta < 0 && f.balances[t.OwnerID]+delta < 0 {
		return models.Transaction{}, models.ErrInsufficientFunds
	}
	f.balances[t.OwnerID] += delta
	t.ID = uuid.NewString()
	t.Status = models.TxnSuccess
	t.CreatedAt = time.Now().UTC()
	f.txns = append(f.txns, t)
	return t, nil
}

type fakeUsers struct{ f *fakeStore }

func (r fakeUsers) Create(ctx context.Context, username, email, passwordHash, role string, hourlyPriceCents int64) (models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u := models.User{
		ID:               uuid.NewString(),
		Username:         username,
		Email:            email,
		PasswordHash:     passwordHash,
		Role:             role,
		HourlyPriceCents: hourlyPriceCents,
		CreatedAt:        time.Now().UTC(),
	}
	r.f.users[u.ID] = u
	return u, nil
}

func (r fakeUsers) GetByID(ctx context.Context, id string) (models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	u, ok := r.f.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

func (r fakeUsers) GetByEmail(ctx context.Context, email string) (models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, u := range r.f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (r fakeUsers) ListConsultants(ctx context.Context) ([]models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.User
	for _, u := range r.f.users {
		if u.Role == models.RoleConsultant {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeLedger struct{ f *fakeStore }

func (r fakeLedger) GetOrCreateWallet(ctx context.Context, ownerID string) (models.Wallet, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return models.Wallet{OwnerID: ownerID, Balance: r.f.balances[ownerID]}, nil
}

func (r fakeLedger) Balance(ctx context.Context, ownerID string) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return r.f.balances[ownerID], nil
}

func (r fakeLedger) Apply(ctx context.Context, txn models.Transaction) (models.Transaction, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return r.f.apply(txn)
}

func (r fakeLedger) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.Transaction, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.Transaction
	for _, t := range r.f.txns {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeSlots struct{ f *fakeStore }

func (r fakeSlots) Create(ctx context.Context, s models.AvailabilitySlot) (models.AvailabilitySlot, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()
	cp := s
	r.f.slots[s.ID] = &cp
	return s, nil
}

func (r fakeSlots) GetByID(ctx context.Context, id string) (models.AvailabilitySlot, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	s, ok := r.f.slots[id]
	if !ok {
		return models.AvailabilitySlot{}, models.ErrNotFound
	}
	return *s, nil
}

func (r fakeSlots) ListByConsultant(ctx context.Context, consultantID string, day time.Time) ([]models.AvailabilitySlot, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.AvailabilitySlot
	for _, s := range r.f.slots {
		if s.ConsultantID == consultantID && s.Day.Equal(day) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r fakeSlots) Reserve(ctx context.Context, id string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	s, ok := r.f.slots[id]
	if !ok {
		return models.ErrNotFound
	}
	if s.Reserved {
		return models.ErrSlotUnavailable
	}
	s.Reserved = true
	return nil
}

func (r fakeSlots) Release(ctx context.Context, id string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if s, ok := r.f.slots[id]; ok {
		s.Reserved = false
	}
	return nil
}

func (r fakeSlots) Delete(ctx context.Context, id string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	s, ok := r.f.slots[id]
	if !ok {
		return models.ErrNotFound
	}
	if s.Reserved {
		return models.ErrSlotReserved
	}
	delete(r.f.slots, id)
	return nil
}

type fakeBookings struct{ f *fakeStore }

func (r fakeBookings) CreateWithPayment(ctx context.Context, b *models.Booking, debit *models.Transaction) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	s, ok := r.f.slots[b.SlotID]
	if !ok {
		return models.ErrNotFound
	}
	if s.Reserved || s.ConsultantID != b.ConsultantID {
		return models.ErrSlotUnavailable
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if debit != nil {
		debit.BookingID = &b.ID
		if _, err := r.f.apply(*debit); err != nil {
			return err
		}
	}
	s.Reserved = true
	b.Day, b.TimeOfDay = s.Day, s.TimeOfDay
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.f.bookings[b.ID] = &cp
	return nil
}

func (r fakeBookings) GetByID(ctx context.Context, id string) (models.Booking, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	b, ok := r.f.bookings[id]
	if !ok {
		return models.Booking{}, models.ErrNotFound
	}
	return *b, nil
}

func (r fakeBookings) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Booking, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.Booking
	for _, b := range r.f.bookings {
		if b.ClientID == userID || b.ConsultantID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r fakeBookings) Accept(ctx context.Context, id string) (models.Booking, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	b, ok := r.f.bookings[id]
	if !ok {
		return models.Booking{}, models.ErrNotFound
	}
	if b.Status != models.BookingPending {
		return *b, models.ErrInvalidTransition
	}
	b.Status = models.BookingAccepted
	return *b, nil
}

func (r fakeBookings) RejectWithRefund(ctx context.Context, id string, refund models.Transaction) (models.Booking, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	b, ok := r.f.bookings[id]
	if !ok {
		return models.Booking{}, models.ErrNotFound
	}
	if b.Status != models.BookingPending {
		return *b, models.ErrInvalidTransition
	}
	if refund.Amount > 0 {
		refund.BookingID = &b.ID
		if _, err := r.f.apply(refund); err != nil {
			return models.Booking{}, err
		}
	}
	b.Status = models.BookingRejected
	r.f.slots[b.SlotID].Reserved = false
	return *b, nil
}

func (r fakeBookings) Cancel(ctx context.Context, id string) (models.Booking, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	b, ok := r.f.bookings[id]
	if !ok {
		return models.Booking{}, models.ErrNotFound
	}
	if b.Status != models.BookingPending && b.Status != models.BookingAccepted {
		return *b, models.ErrInvalidTransition
	}
	b.Status = models.BookingCancelled
	r.f.slots[b.SlotID].Reserved = false
	return *b, nil
}

func (r fakeBookings) CompleteWithPayout(ctx context.Context, id string, durationMinutes int, commission, earning models.Transaction) (models.Booking, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	b, ok := r.f.bookings[id]
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
		if _, err := r.f.apply(commission); err != nil {
			return models.Booking{}, err
		}
	}
	if earning.Amount > 0 {
		if _, err := r.f.apply(earning); err != nil {
			return models.Booking{}, err
		}
	}
	b.Status = models.BookingCompleted
	b.CallCompleted = true
	b.CallDurationMinutes = durationMinutes
	return *b, nil
}

type fakeOrders struct{ f *fakeStore }

func (r fakeOrders) Create(ctx context.Context, o models.PaymentOrder) (models.PaymentOrder, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	o.Status = models.OrderPending
	o.CreatedAt = time.Now().UTC()
	cp := o
	r.f.orders[o.ExternalOrderID] = &cp
	return o, nil
}

func (r fakeOrders) Get(ctx context.Context, externalOrderID string) (models.PaymentOrder, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	o, ok := r.f.orders[externalOrderID]
	if !ok {
		return models.PaymentOrder{}, models.ErrNotFound
	}
	return *o, nil
}

func (r fakeOrders) CompleteWithCredit(ctx context.Context, externalOrderID string, credit models.Transaction) (models.PaymentOrder, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	o, ok := r.f.orders[externalOrderID]
	if !ok {
		return models.PaymentOrder{}, models.ErrNotFound
	}
	if o.Status != models.OrderPending {
		return *o, models.ErrAlreadyProcessed
	}
	if _, err := r.f.apply(credit); err != nil {
		return models.PaymentOrder{}, err
	}
	o.Status = models.OrderCompleted
	return *o, nil
}

type fakeMessages struct{ f *fakeStore }

func (r fakeMessages) Create(ctx context.Context, m *models.Message) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()
	r.f.messages = append(r.f.messages, *m)
	return nil
}

func (r fakeMessages) ListByBooking(ctx context.Context, bookingID string, limit int) ([]models.Message, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.Message
	for _, m := range r.f.messages {
		if m.BookingID == bookingID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeMessages) CountByBooking(ctx context.Context, bookingID string) (int, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	n := 0
	for _, m := range r.f.messages {
		if m.BookingID == bookingID {
			n++
		}
	}
	return n, nil
}
