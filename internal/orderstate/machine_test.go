package orderstate_test

import (
	"context"
	"errors"
	"testing"

	"shop/internal/domain/model"
	"shop/internal/orderstate"
	repo "shop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByNumber(ctx context.Context, number string) (model.Order, error) {
	panic("not used")
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	panic("not used")
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	panic("not used")
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	panic("not used")
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	panic("not used")
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	panic("not used")
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type HistoryRepoMock struct{ mock.Mock }

func (m *HistoryRepoMock) Create(ctx context.Context, h model.OrderStatusHistory) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *HistoryRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderStatusHistory, error) {
	args := m.Called(ctx, orderID)
	list, _ := args.Get(0).([]model.OrderStatusHistory)
	return list, args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	panic("not used")
}

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	panic("not used")
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *InventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	panic("not used")
}

// txReposStub satisfies repo.TxRepos with just the repos the machine
// touches.
type txReposStub struct {
	orders    *OrderRepoMock
	items     *OrderItemRepoMock
	histories *HistoryRepoMock
	inventory *InventoryRepoMock
}

func newTxReposStub() *txReposStub {
	return &txReposStub{
		orders:    new(OrderRepoMock),
		items:     new(OrderItemRepoMock),
		histories: new(HistoryRepoMock),
		inventory: new(InventoryRepoMock),
	}
}

func (s *txReposStub) Orders() repo.OrderRepository                    { return s.orders }
func (s *txReposStub) OrderItems() repo.OrderItemRepository            { return s.items }
func (s *txReposStub) OrderHistories() repo.OrderStatusHistoryRepository { return s.histories }
func (s *txReposStub) Carts() repo.CartRepository                      { panic("not used") }
func (s *txReposStub) CartItems() repo.CartItemRepository              { panic("not used") }
func (s *txReposStub) Addresses() repo.AddressRepository               { panic("not used") }
func (s *txReposStub) CheckoutStates() repo.CheckoutStateRepository    { panic("not used") }
func (s *txReposStub) Inventory() repo.InventoryRepository             { return s.inventory }
func (s *txReposStub) Products() repo.ProductRepository                { panic("not used") }

func newMachine() *orderstate.Machine {
	return orderstate.NewMachine(orderstate.DefaultTable(), zap.NewNop())
}

func TestMachine_Can_DefaultTable(t *testing.T) {
	m := newMachine()

	assert.True(t, m.Can(model.OrderStatusUnpaid, model.OrderStatusPaid))
	assert.True(t, m.Can(model.OrderStatusPaid, model.OrderStatusUnshipped))
	assert.True(t, m.Can(model.OrderStatusUnshipped, model.OrderStatusShipped))
	assert.True(t, m.Can(model.OrderStatusShipped, model.OrderStatusCompleted))

	// Cancellation is open from every non-terminal state.
	assert.True(t, m.Can(model.OrderStatusUnpaid, model.OrderStatusCancelled))
	assert.True(t, m.Can(model.OrderStatusPaid, model.OrderStatusCancelled))
	assert.True(t, m.Can(model.OrderStatusUnshipped, model.OrderStatusCancelled))
	assert.True(t, m.Can(model.OrderStatusShipped, model.OrderStatusCancelled))
}

func TestMachine_Can_NoSkippingAhead(t *testing.T) {
	m := newMachine()

	assert.False(t, m.Can(model.OrderStatusUnpaid, model.OrderStatusShipped))
	assert.False(t, m.Can(model.OrderStatusUnpaid, model.OrderStatusCompleted))
	assert.False(t, m.Can(model.OrderStatusPaid, model.OrderStatusShipped))
}

func TestMachine_Can_TerminalStates(t *testing.T) {
	m := newMachine()

	for _, to := range []model.OrderStatus{
		model.OrderStatusUnpaid, model.OrderStatusPaid, model.OrderStatusUnshipped,
		model.OrderStatusShipped, model.OrderStatusCompleted, model.OrderStatusCancelled,
	} {
		assert.False(t, m.Can(model.OrderStatusCompleted, to))
		assert.False(t, m.Can(model.OrderStatusCancelled, to))
	}
}

func TestMachine_ChangeStatus_ValidTransition(t *testing.T) {
	ctx := context.Background()
	m := newMachine()
	r := newTxReposStub()

	order := model.Order{ID: 7, Status: model.OrderStatusUnpaid}

	r.orders.On("UpdateStatus", mock.Anything, int64(7), model.OrderStatusPaid).Return(nil)
	r.histories.On("Create", mock.Anything, mock.MatchedBy(func(h model.OrderStatusHistory) bool {
		return h.OrderID == 7 &&
			h.FromStatus == model.OrderStatusUnpaid &&
			h.ToStatus == model.OrderStatusPaid &&
			h.Actor == "admin"
	})).Return(nil)

	err := m.ChangeStatus(ctx, r, order, model.OrderStatusPaid, "admin", "")

	assert.NoError(t, err)
	r.orders.AssertExpectations(t)
	r.histories.AssertExpectations(t)
}

func TestMachine_ChangeStatus_InvalidTransition(t *testing.T) {
	ctx := context.Background()
	m := newMachine()
	r := newTxReposStub()

	order := model.Order{ID: 7, Status: model.OrderStatusUnpaid}

	err := m.ChangeStatus(ctx, r, order, model.OrderStatusShipped, "admin", "")

	assert.ErrorIs(t, err, orderstate.ErrInvalidTransition)
	r.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	r.histories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMachine_ChangeStatus_SameStatusIsNoop(t *testing.T) {
	ctx := context.Background()
	m := newMachine()
	r := newTxReposStub()

	order := model.Order{ID: 7, Status: model.OrderStatusPaid}

	err := m.ChangeStatus(ctx, r, order, model.OrderStatusPaid, "admin", "")

	assert.NoError(t, err)
	r.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestMachine_ChangeStatus_HookFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	m := newMachine()
	r := newTxReposStub()

	hookErr := errors.New("hook exploded")
	m.RegisterHook(func(_ context.Context, _ repo.TxRepos, _ orderstate.Transition) error {
		return hookErr
	})

	order := model.Order{ID: 7, Status: model.OrderStatusUnpaid}

	r.orders.On("UpdateStatus", mock.Anything, int64(7), model.OrderStatusPaid).Return(nil)
	r.histories.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := m.ChangeStatus(ctx, r, order, model.OrderStatusPaid, "admin", "")

	assert.ErrorIs(t, err, hookErr)
}

func TestMachine_ChangeStatus_HooksRunInOrder(t *testing.T) {
	ctx := context.Background()
	m := newMachine()
	r := newTxReposStub()

	var calls []string
	m.RegisterHook(func(_ context.Context, _ repo.TxRepos, _ orderstate.Transition) error {
		calls = append(calls, "first")
		return nil
	})
	m.RegisterHook(func(_ context.Context, _ repo.TxRepos, _ orderstate.Transition) error {
		calls = append(calls, "second")
		return nil
	})

	order := model.Order{ID: 7, Status: model.OrderStatusUnpaid}

	r.orders.On("UpdateStatus", mock.Anything, int64(7), model.OrderStatusPaid).Return(nil)
	r.histories.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := m.ChangeStatus(ctx, r, order, model.OrderStatusPaid, "admin", "")

	assert.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestMachine_Initial_WritesCreationHistory(t *testing.T) {
	ctx := context.Background()
	m := newMachine()
	r := newTxReposStub()

	order := model.Order{ID: 9, Status: model.OrderStatusUnpaid}

	r.histories.On("Create", mock.Anything, mock.MatchedBy(func(h model.OrderStatusHistory) bool {
		return h.OrderID == 9 &&
			h.FromStatus == model.OrderStatus("") &&
			h.ToStatus == model.OrderStatusUnpaid
	})).Return(nil)

	err := m.Initial(ctx, r, order, "customer")

	assert.NoError(t, err)
	r.histories.AssertExpectations(t)
}

func TestMachine_RestockOnCancelHook(t *testing.T) {
	ctx := context.Background()
	m := newMachine()
	m.RegisterHook(orderstate.RestockOnCancel())
	r := newTxReposStub()

	order := model.Order{ID: 3, Status: model.OrderStatusPaid}

	r.orders.On("UpdateStatus", mock.Anything, int64(3), model.OrderStatusCancelled).Return(nil)
	r.histories.On("Create", mock.Anything, mock.Anything).Return(nil)
	r.items.On("ListByOrderID", mock.Anything, int64(3)).Return([]model.OrderItem{
		{ProductID: 11, Quantity: 2},
		{ProductID: 12, Quantity: 1},
	}, nil)
	r.inventory.On("IncreaseStock", mock.Anything, int64(11), int64(2)).Return(nil)
	r.inventory.On("IncreaseStock", mock.Anything, int64(12), int64(1)).Return(nil)

	err := m.ChangeStatus(ctx, r, order, model.OrderStatusCancelled, "admin", "customer request")

	assert.NoError(t, err)
	r.inventory.AssertExpectations(t)
}

func TestMachine_RestockOnCancelHook_OtherTransitionsUntouched(t *testing.T) {
	ctx := context.Background()
	m := newMachine()
	m.RegisterHook(orderstate.RestockOnCancel())
	r := newTxReposStub()

	order := model.Order{ID: 3, Status: model.OrderStatusUnpaid}

	r.orders.On("UpdateStatus", mock.Anything, int64(3), model.OrderStatusPaid).Return(nil)
	r.histories.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := m.ChangeStatus(ctx, r, order, model.OrderStatusPaid, "admin", "")

	assert.NoError(t, err)
	r.items.AssertNotCalled(t, "ListByOrderID", mock.Anything, mock.Anything)
}

func TestReplay(t *testing.T) {
	history := []model.OrderStatusHistory{
		{FromStatus: "", ToStatus: model.OrderStatusUnpaid},
		{FromStatus: model.OrderStatusUnpaid, ToStatus: model.OrderStatusPaid},
		{FromStatus: model.OrderStatusPaid, ToStatus: model.OrderStatusUnshipped},
	}

	assert.Equal(t, model.OrderStatusUnshipped, orderstate.Replay(history))
	assert.Equal(t, model.OrderStatus(""), orderstate.Replay(nil))
}

func TestMachine_CustomTable(t *testing.T) {
	// A deployment can narrow the policy, e.g. forbid cancelling
	// shipped orders.
	table := orderstate.Table{
		model.OrderStatusUnpaid:    {model.OrderStatusPaid, model.OrderStatusCancelled},
		model.OrderStatusPaid:      {model.OrderStatusUnshipped, model.OrderStatusCancelled},
		model.OrderStatusUnshipped: {model.OrderStatusShipped, model.OrderStatusCancelled},
		model.OrderStatusShipped:   {model.OrderStatusCompleted},
	}
	m := orderstate.NewMachine(table, zap.NewNop())

	assert.False(t, m.Can(model.OrderStatusShipped, model.OrderStatusCancelled))
	assert.True(t, m.Can(model.OrderStatusShipped, model.OrderStatusCompleted))
}
