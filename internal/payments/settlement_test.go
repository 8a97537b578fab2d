package payments

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sonusk4/consult-sub001/internal/models"
	"github.com/Sonusk4/consult-sub001/internal/worker"
)

// memOrders mimics the postgres contract: the PENDING -> COMPLETED flip
// and the wallet credit happen together, and only the first flip wins.
type memOrders struct {
	mu       sync.Mutex
	orders   map[string]*models.PaymentOrder
	balances map[string]int64
	credits  int
}

func newMemOrders() *memOrders {
	return &memOrders{
		orders:   make(map[string]*models.PaymentOrder),
		balances: make(map[string]int64),
	}
}

func (m *memOrders) Create(ctx context.Context, o models.PaymentOrder) (models.PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.Status = models.OrderPending
	cp := o
	m.orders[o.ExternalOrderID] = &cp
	return o, nil
}

func (m *memOrders) Get(ctx context.Context, externalOrderID string) (models.PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[externalOrderID]
	if !ok {
		return models.PaymentOrder{}, models.ErrNotFound
	}
	return *o, nil
}

func (m *memOrders) CompleteWithCredit(ctx context.Context, externalOrderID string, credit models.Transaction) (models.PaymentOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[externalOrderID]
	if !ok {
		return models.PaymentOrder{}, models.ErrNotFound
	}
	if o.Status != models.OrderPending {
		return *o, models.ErrAlreadyProcessed
	}
	o.Status = models.OrderCompleted
	m.balances[credit.OwnerID] += credit.BalanceDelta()
	m.credits++
	return *o, nil
}

func newTestSettlement(t *testing.T) (*Service, *memOrders) {
	t.Helper()
	st := newMemOrders()
	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)
	return NewService(st, "whsecret", wp), st
}

func TestInitiateTopUpValidates(t *testing.T) {
	svc, _ := newTestSettlement(t)

	_, err := svc.InitiateTopUp(context.Background(), "u1", 0, 0)
	require.Error(t, err)
	_, err = svc.InitiateTopUp(context.Background(), "u1", 100, -1)
	require.Error(t, err)

	o, err := svc.InitiateTopUp(context.Background(), "u1", 100, 20)
	require.NoError(t, err)
	require.Equal(t, models.OrderPending, o.Status)
	require.NotEmpty(t, o.ExternalOrderID)
}

func TestSettleAppliesOnce(t *testing.T) {
	svc, st := newTestSettlement(t)
	o, err := svc.InitiateTopUp(context.Background(), "u1", 100, 20)
	require.NoError(t, err)

	sig := Sign(o.ExternalOrderID, "pay_1", "whsecret")

	res, err := svc.Settle(context.Background(), o.ExternalOrderID, "pay_1", sig, 100)
	require.NoError(t, err)
	require.Equal(t, SettlementApplied, res.Code)
	require.Equal(t, models.OrderCompleted, res.Order.Status)
	require.Equal(t, int64(120), st.balances["u1"], "amount plus bonus")

	// Gateway retry: same arguments, no second credit.
	res, err = svc.Settle(context.Background(), o.ExternalOrderID, "pay_1", sig, 100)
	require.NoError(t, err)
	require.Equal(t, SettlementAlreadyProcessed, res.Code)
	require.Equal(t, int64(120), st.balances["u1"])
	require.Equal(t, 1, st.credits)
}

func TestSettleRejectsBadSignature(t *testing.T) {
	svc, st := newTestSettlement(t)
	o, err := svc.InitiateTopUp(context.Background(), "u1", 100, 0)
	require.NoError(t, err)

	sig := Sign(o.ExternalOrderID, "pay_1", "wrong-secret")
	_, err = svc.Settle(context.Background(), o.ExternalOrderID, "pay_1", sig, 100)
	require.ErrorIs(t, err, models.ErrInvalidSignature)
	require.Zero(t, st.balances["u1"])

	got, err := st.Get(context.Background(), o.ExternalOrderID)
	require.NoError(t, err)
	require.Equal(t, models.OrderPending, got.Status)
}

func TestSettleOrphanedOrder(t *testing.T) {
	svc, st := newTestSettlement(t)

	sig := Sign("order_ghost", "pay_1", "whsecret")
	res, err := svc.Settle(context.Background(), "order_ghost", "pay_1", sig, 500)
	require.NoError(t, err, "orphans are reported, not failed")
	require.Equal(t, SettlementOrphaned, res.Code)
	require.Zero(t, st.credits)
}
