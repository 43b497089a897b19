package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Error(1)
}

func (m *OrderRepoMock) ListByRestaurantID(ctx context.Context, restaurantID int64) ([]model.Order, error) {
	args := m.Called(ctx, restaurantID)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Error(1)
}

func (m *OrderRepoMock) ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	args := m.Called(ctx, status)
	list, _ := args.Get(0).([]model.Order)
	return list, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, at time.Time) error {
	args := m.Called(ctx, orderID, status, at)
	return args.Error(0)
}

func (m *OrderRepoMock) Cancel(ctx context.Context, orderID int64, reason string, at time.Time) error {
	args := m.Called(ctx, orderID, reason, at)
	return args.Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Send(ctx context.Context, recipient string, subject string, body string) error {
	args := m.Called(ctx, recipient, subject, body)
	return args.Error(0)
}

// WithinTxをそのまま同期実行するスタブ
type txRepos struct {
	orders      *OrderRepoMock
	orderItems  *OrderItemRepoMock
	carts       *CartRepoMock
	cartItems   *CartItemRepoMock
	menuItems   *MenuRepoMock
	restaurants *RestRepoMock
}

func (s *txRepos) Orders() repo.OrderRepository           { return s.orders }
func (s *txRepos) OrderItems() repo.OrderItemRepository   { return s.orderItems }
func (s *txRepos) Carts() repo.CartRepository             { return s.carts }
func (s *txRepos) CartItems() repo.CartItemRepository     { return s.cartItems }
func (s *txRepos) MenuItems() repo.MenuItemRepository     { return s.menuItems }
func (s *txRepos) Restaurants() repo.RestaurantRepository { return s.restaurants }

type txManagerStub struct{ repos *txRepos }

func (m *txManagerStub) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}

func newOrderFixture() (*usecase.OrderUsecase, *txRepos, *UserRepoMock, *NotifierMock) {
	repos := &txRepos{
		orders:      new(OrderRepoMock),
		orderItems:  new(OrderItemRepoMock),
		carts:       new(CartRepoMock),
		cartItems:   new(CartItemRepoMock),
		menuItems:   new(MenuRepoMock),
		restaurants: new(RestRepoMock),
	}
	userRepo := new(UserRepoMock)
	notifier := new(NotifierMock)
	uc := usecase.NewOrderUsecase(&txManagerStub{repos: repos}, userRepo, notifier, nil)
	return uc, repos, userRepo, notifier
}

// =====================
// CreateOrder
// =====================

func TestOrderUsecase_CreateOrder_EmptyLines(t *testing.T) {
	uc, _, _, _ := newOrderFixture()

	_, err := uc.CreateOrder(context.Background(), 7, usecase.CreateOrderInput{
		RestaurantID:    10,
		PhoneNumber:     "000-0000",
		DeliveryAddress: "1-2-3 Sample St",
	})
	assertHTTPStatus(t, err, 400)
}

func TestOrderUsecase_CreateOrder_MissingDeliveryInfo(t *testing.T) {
	uc, _, _, _ := newOrderFixture()

	_, err := uc.CreateOrder(context.Background(), 7, usecase.CreateOrderInput{
		RestaurantID: 10,
		Lines:        []usecase.OrderLineInput{{MenuItemID: 1, Quantity: 1}},
		PhoneNumber:  "000-0000",
	})
	assertHTTPStatus(t, err, 400)
}

func TestOrderUsecase_CreateOrder_RejectsForgedPrice(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.restaurants.On("FindByID", ctx, int64(10)).Return(model.Restaurant{ID: 10}, nil)
	repos.menuItems.On("FindByID", ctx, int64(1)).Return(pizzaMenuItem(), nil)

	_, err := uc.CreateOrder(ctx, 7, usecase.CreateOrderInput{
		RestaurantID:    10,
		Lines:           []usecase.OrderLineInput{{MenuItemID: 1, Quantity: 2, UnitPrice: dec("1.00")}},
		PhoneNumber:     "000-0000",
		DeliveryAddress: "1-2-3 Sample St",
	})
	assertHTTPStatus(t, err, 400)
}

func TestOrderUsecase_CreateOrder_RepricesFromCatalog(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.restaurants.On("FindByID", ctx, int64(10)).Return(model.Restaurant{ID: 10}, nil)
	repos.menuItems.On("FindByID", ctx, int64(1)).Return(pizzaMenuItem(), nil)
	repos.menuItems.On("FindByID", ctx, int64(2)).Return(model.MenuItem{
		ID: 2, RestaurantID: 10, Name: "Caesar Salad", Price: dec("5.00"), IsAvailable: true,
	}, nil)

	repos.orders.On("Create", ctx, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 7 &&
			o.RestaurantID == 10 &&
			o.Status == model.OrderStatusPending &&
			o.OrderNumber != "" &&
			o.TotalAmount.Equal(dec("25.00"))
	})).Return(int64(42), nil)
	repos.orderItems.On("CreateBulk", ctx, int64(42), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 && items[0].UnitPrice.Equal(dec("10.00"))
	})).Return(nil)

	out, err := uc.CreateOrder(ctx, 7, usecase.CreateOrderInput{
		RestaurantID: 10,
		Lines: []usecase.OrderLineInput{
			{MenuItemID: 1, Quantity: 2},
			{MenuItemID: 2, Quantity: 1},
		},
		PhoneNumber:     "000-0000",
		DeliveryAddress: "1-2-3 Sample St",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), out.ID)
	assert.Equal(t, "Pending", out.Status)
	assert.True(t, out.TotalAmount.Equal(dec("25.00")))
	assert.NotEmpty(t, out.OrderNumber)
	repos.orders.AssertExpectations(t)
}

// =====================
// CreateOrderFromCart
// =====================

func TestOrderUsecase_CreateOrderFromCart_HiddenFromNonOwner(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.carts.On("FindByID", ctx, int64(3)).Return(model.Cart{ID: 3, UserID: 8, RestaurantID: 10}, nil)

	_, err := uc.CreateOrderFromCart(ctx, 7, usecase.CheckoutFromCartInput{
		CartID:          3,
		PhoneNumber:     "000-0000",
		DeliveryAddress: "1-2-3 Sample St",
	})
	assertHTTPStatus(t, err, 404)
}

func TestOrderUsecase_CreateOrderFromCart_EmptyCart(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.carts.On("FindByID", ctx, int64(3)).Return(model.Cart{ID: 3, UserID: 7, RestaurantID: 10}, nil)
	repos.cartItems.On("ListByCartID", ctx, int64(3)).Return([]model.CartItem{}, nil)

	_, err := uc.CreateOrderFromCart(ctx, 7, usecase.CheckoutFromCartInput{
		CartID:          3,
		PhoneNumber:     "000-0000",
		DeliveryAddress: "1-2-3 Sample St",
	})
	assertHTTPStatus(t, err, 400)
}

func TestOrderUsecase_CreateOrderFromCart_ClearsCartInSameTx(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.carts.On("FindByID", ctx, int64(3)).Return(model.Cart{ID: 3, UserID: 7, RestaurantID: 10}, nil)
	repos.cartItems.On("ListByCartID", ctx, int64(3)).Return([]model.CartItem{
		{ID: 21, CartID: 3, MenuItemID: 1, Quantity: 2, Subtotal: dec("20.00")},
		{ID: 22, CartID: 3, MenuItemID: 2, Quantity: 1, Subtotal: dec("5.00")},
	}, nil)
	repos.menuItems.On("FindByID", ctx, int64(1)).Return(pizzaMenuItem(), nil)
	repos.menuItems.On("FindByID", ctx, int64(2)).Return(model.MenuItem{
		ID: 2, RestaurantID: 10, Name: "Caesar Salad", Price: dec("5.00"), IsAvailable: true,
	}, nil)

	repos.orders.On("Create", ctx, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 7 && o.RestaurantID == 10 && o.TotalAmount.Equal(dec("25.00"))
	})).Return(int64(42), nil)
	repos.orderItems.On("CreateBulk", ctx, int64(42), mock.MatchedBy(func(items []model.OrderItem) bool {
		//カート取り込み時点の単価（小計÷数量）を引き継ぐ
		return len(items) == 2 && items[0].UnitPrice.Equal(dec("10.00")) && items[1].UnitPrice.Equal(dec("5.00"))
	})).Return(nil)

	repos.cartItems.On("DeleteByCartID", ctx, int64(3)).Return(nil)
	repos.carts.On("UpdateTotal", ctx, int64(3), int64(0), decEq(decimal.Zero)).Return(nil)

	out, err := uc.CreateOrderFromCart(ctx, 7, usecase.CheckoutFromCartInput{
		CartID:          3,
		PhoneNumber:     "000-0000",
		DeliveryAddress: "1-2-3 Sample St",
	})
	require.NoError(t, err)

	assert.True(t, out.TotalAmount.Equal(dec("25.00")))
	assert.Equal(t, "Pending", out.Status)
	repos.carts.AssertExpectations(t)
	repos.cartItems.AssertExpectations(t)
}

// =====================
// UpdateOrderStatus
// =====================

func TestOrderUsecase_UpdateOrderStatus_PendingToConfirmedNotifies(t *testing.T) {
	uc, repos, userRepo, notifier := newOrderFixture()
	ctx := context.Background()

	repos.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 7, RestaurantID: 10, OrderNumber: "abc", Status: model.OrderStatusPending,
		TotalAmount: dec("25.00"),
	}, nil)
	repos.orders.On("UpdateStatus", ctx, int64(42), model.OrderStatusConfirmed, mock.Anything).Return(nil)
	repos.orderItems.On("ListByOrderID", ctx, int64(42)).Return([]model.OrderItem{}, nil)

	userRepo.On("FindByID", ctx, int64(7)).Return(model.User{ID: 7, Email: "user@example.com"}, nil)
	notifier.On("Send", ctx, "user@example.com", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.UpdateOrderStatus(ctx, 7, 42, "Confirmed")
	require.NoError(t, err)

	assert.Equal(t, "Confirmed", out.Status)
	require.NotNil(t, out.ConfirmedAt)
	notifier.AssertCalled(t, "Send", ctx, "user@example.com", mock.Anything, mock.Anything)
}

func TestOrderUsecase_UpdateOrderStatus_NotifyFailureIsSwallowed(t *testing.T) {
	uc, repos, userRepo, notifier := newOrderFixture()
	ctx := context.Background()

	repos.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 7, Status: model.OrderStatusPending,
	}, nil)
	repos.orders.On("UpdateStatus", ctx, int64(42), model.OrderStatusConfirmed, mock.Anything).Return(nil)
	repos.orderItems.On("ListByOrderID", ctx, int64(42)).Return([]model.OrderItem{}, nil)

	userRepo.On("FindByID", ctx, int64(7)).Return(model.User{ID: 7, Email: "user@example.com"}, nil)
	notifier.On("Send", ctx, "user@example.com", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	out, err := uc.UpdateOrderStatus(ctx, 7, 42, "Confirmed")
	require.NoError(t, err)
	assert.Equal(t, "Confirmed", out.Status)
}

func TestOrderUsecase_UpdateOrderStatus_ForwardWalk(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 7, Status: model.OrderStatusConfirmed,
	}, nil).Once()
	repos.orders.On("UpdateStatus", ctx, int64(42), model.OrderStatusPreparing, mock.Anything).Return(nil)
	repos.orderItems.On("ListByOrderID", ctx, int64(42)).Return([]model.OrderItem{}, nil)

	out, err := uc.UpdateOrderStatus(ctx, 7, 42, "Preparing")
	require.NoError(t, err)
	assert.Equal(t, "Preparing", out.Status)
	require.NotNil(t, out.PreparedAt)

	repos.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 7, Status: model.OrderStatusPreparing,
	}, nil).Once()
	repos.orders.On("UpdateStatus", ctx, int64(42), model.OrderStatusCompleted, mock.Anything).Return(nil)

	out, err = uc.UpdateOrderStatus(ctx, 7, 42, "Completed")
	require.NoError(t, err)
	assert.Equal(t, "Completed", out.Status)
	require.NotNil(t, out.CompletedAt)
}

func TestOrderUsecase_UpdateOrderStatus_SkippingStepRejected(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 7, Status: model.OrderStatusPending,
	}, nil)

	_, err := uc.UpdateOrderStatus(ctx, 7, 42, "Completed")
	assertHTTPStatus(t, err, 409)
}

func TestOrderUsecase_UpdateOrderStatus_AlreadyConfirmed(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 7, Status: model.OrderStatusConfirmed,
	}, nil)

	_, err := uc.UpdateOrderStatus(ctx, 7, 42, "Confirmed")
	assertHTTPStatus(t, err, 409)
}

func TestOrderUsecase_UpdateOrderStatus_CancelledNotReachableHere(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 7, Status: model.OrderStatusPending,
	}, nil)

	_, err := uc.UpdateOrderStatus(ctx, 7, 42, "Cancelled")
	assertHTTPStatus(t, err, 409)
}

func TestOrderUsecase_UpdateOrderStatus_NonOwnerForbidden(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 8, Status: model.OrderStatusPending,
	}, nil)

	_, err := uc.UpdateOrderStatus(ctx, 7, 42, "Confirmed")
	assertHTTPStatus(t, err, 403)
}

func TestOrderUsecase_UpdateOrderStatus_UnknownStatus(t *testing.T) {
	uc, _, _, _ := newOrderFixture()

	_, err := uc.UpdateOrderStatus(context.Background(), 7, 42, "Shipped")
	assertHTTPStatus(t, err, 400)
}

// =====================
// CancelOrder
// =====================

func TestOrderUsecase_CancelOrder_SetsReasonAndTimestamp(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 7, Status: model.OrderStatusConfirmed,
	}, nil)
	repos.orders.On("Cancel", ctx, int64(42), "changed my mind", mock.Anything).Return(nil)
	repos.orderItems.On("ListByOrderID", ctx, int64(42)).Return([]model.OrderItem{}, nil)

	out, err := uc.CancelOrder(ctx, 7, 42, usecase.CancelOrderInput{Reason: "changed my mind"})
	require.NoError(t, err)

	assert.Equal(t, "Cancelled", out.Status)
	assert.Equal(t, "changed my mind", out.CancellationReason)
	require.NotNil(t, out.CancelledAt)
}

func TestOrderUsecase_CancelOrder_TerminalRejected(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 7, Status: model.OrderStatusCompleted,
	}, nil)

	_, err := uc.CancelOrder(ctx, 7, 42, usecase.CancelOrderInput{})
	assertHTTPStatus(t, err, 409)
}

func TestOrderUsecase_CancelOrder_HiddenFromNonOwner(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 8, Status: model.OrderStatusPending,
	}, nil)

	_, err := uc.CancelOrder(ctx, 7, 42, usecase.CancelOrderInput{})
	assertHTTPStatus(t, err, 404)
}

// =====================
// Reads
// =====================

func TestOrderUsecase_GetOrderByID_HiddenFromNonOwner(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.orders.On("FindByID", ctx, int64(42)).Return(model.Order{
		ID: 42, UserID: 8, Status: model.OrderStatusPending,
	}, nil)

	_, err := uc.GetOrderByID(ctx, 7, 42)
	assertHTTPStatus(t, err, 404)
}

func TestOrderUsecase_ListOrdersByStatus_UnknownStatus(t *testing.T) {
	uc, _, _, _ := newOrderFixture()

	_, err := uc.ListOrdersByStatus(context.Background(), "Shipped")
	assertHTTPStatus(t, err, 400)
}

func TestOrderUsecase_ListOrdersByUser(t *testing.T) {
	uc, repos, _, _ := newOrderFixture()
	ctx := context.Background()

	repos.orders.On("ListByUserID", ctx, int64(7)).Return([]model.Order{
		{ID: 43, UserID: 7, Status: model.OrderStatusConfirmed, TotalAmount: dec("5.00")},
		{ID: 42, UserID: 7, Status: model.OrderStatusCompleted, TotalAmount: dec("25.00")},
	}, nil)
	repos.orderItems.On("ListByOrderID", ctx, int64(43)).Return([]model.OrderItem{}, nil)
	repos.orderItems.On("ListByOrderID", ctx, int64(42)).Return([]model.OrderItem{}, nil)

	out, err := uc.ListOrdersByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(43), out[0].ID)
}
