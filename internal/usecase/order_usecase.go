package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/notification"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderUsecase は注文の作成とステータス遷移を担う。
// 通知は確定コミットの後に送り、失敗してもログだけで握りつぶす。
type OrderUsecase struct {
	tx       repo.TransactionManager
	userRepo repo.UserRepository
	notifier notification.Notifier
	logger   *zap.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	userRepo repo.UserRepository,
	notifier notification.Notifier,
	logger *zap.Logger,
) *OrderUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderUsecase{tx: tx, userRepo: userRepo, notifier: notifier, logger: logger}
}

type OrderLineInput struct {
	MenuItemID int64           `json:"menu_item_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

type CreateOrderInput struct {
	RestaurantID        int64
	Lines               []OrderLineInput
	PhoneNumber         string
	DeliveryAddress     string
	SpecialInstructions string
}

type CheckoutFromCartInput struct {
	CartID              int64
	SpecialInstructions string
	PhoneNumber         string
	DeliveryAddress     string
}

type CancelOrderInput struct {
	Reason string
}

type OrderLineOutput struct {
	MenuItemID int64           `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int64           `json:"quantity"`
}

type OrderOutput struct {
	ID                  int64             `json:"id"`
	OrderNumber         string            `json:"order_number"`
	UserID              int64             `json:"user_id"`
	RestaurantID        int64             `json:"restaurant_id"`
	Status              string            `json:"status"`
	TotalAmount         decimal.Decimal   `json:"total_amount"`
	DeliveryAddress     string            `json:"delivery_address"`
	PhoneNumber         string            `json:"phone_number"`
	SpecialInstructions string            `json:"special_instructions,omitempty"`
	CancellationReason  string            `json:"cancellation_reason,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	ConfirmedAt         *time.Time        `json:"confirmed_at"`
	PreparedAt          *time.Time        `json:"prepared_at"`
	CompletedAt         *time.Time        `json:"completed_at"`
	CancelledAt         *time.Time        `json:"cancelled_at"`
	Items               []OrderLineOutput `json:"items"`
}

// 明細指定で直接注文を作る。
// 単価はDTOを信用せず、カタログの現在価格と突き合わせる。
// ずれていたら400（古い/改ざんされた価格はここで落ちる）。
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.RestaurantID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid restaurant_id")
	}
	if len(in.Lines) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "order lines required")
	}
	if err := validateDeliveryInfo(in.PhoneNumber, in.DeliveryAddress); err != nil {
		return OrderOutput{}, err
	}
	for _, l := range in.Lines {
		if l.MenuItemID <= 0 || l.Quantity < 1 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order line")
		}
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.Restaurants().FindByID(ctx, in.RestaurantID); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "restaurant not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		total := decimal.Zero
		orderItems := make([]model.OrderItem, 0, len(in.Lines))

		for _, l := range in.Lines {
			m, err := r.MenuItems().FindByID(ctx, l.MenuItemID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "menu item not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if m.RestaurantID != in.RestaurantID {
				return NewHTTPError(http.StatusBadRequest, "menu item not in this restaurant")
			}
			if !m.IsAvailable {
				return NewHTTPError(http.StatusBadRequest, "menu item not available")
			}
			//サーバー側で必ず再価格付けする。
			//DTOが単価を主張してきた場合はカタログと一致しない限り拒否。
			if !l.UnitPrice.IsZero() && !l.UnitPrice.Equal(m.Price) {
				return NewHTTPError(http.StatusBadRequest, "price mismatch")
			}

			qty := decimal.NewFromInt(l.Quantity)
			total = total.Add(m.Price.Mul(qty))

			orderItems = append(orderItems, model.OrderItem{
				MenuItemID:       m.ID,
				MenuItemSnapshot: m.Name,
				UnitPrice:        m.Price,
				Quantity:         l.Quantity,
			})
		}

		now := time.Now()
		order := model.Order{
			OrderNumber:         uuid.NewString(),
			UserID:              userID,
			RestaurantID:        in.RestaurantID,
			Status:              model.OrderStatusPending,
			TotalAmount:         total,
			DeliveryAddress:     strings.TrimSpace(in.DeliveryAddress),
			PhoneNumber:         strings.TrimSpace(in.PhoneNumber),
			SpecialInstructions: in.SpecialInstructions,
			CreatedAt:           now,
			UpdatedAt:           now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// カートから注文を作る。
// 単価はカートに取り込んだ時点の価格（小計÷数量）。
// 注文作成・明細作成・カートのクリアは1つのトランザクションで行う。
func (u *OrderUsecase) CreateOrderFromCart(ctx context.Context, userID int64, in CheckoutFromCartInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.CartID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid cart id")
	}
	if err := validateDeliveryInfo(in.PhoneNumber, in.DeliveryAddress); err != nil {
		return OrderOutput{}, err
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByID(ctx, in.CartID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "cart not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		//他人のカートは「存在しない扱い」
		if cart.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "cart not found")
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		total := decimal.Zero
		orderItems := make([]model.OrderItem, 0, len(cartItems))

		for _, ci := range cartItems {
			unit := ci.Subtotal.Div(decimal.NewFromInt(ci.Quantity))

			name := ""
			if m, err := r.MenuItems().FindByID(ctx, ci.MenuItemID); err == nil {
				name = m.Name
			}

			orderItems = append(orderItems, model.OrderItem{
				MenuItemID:       ci.MenuItemID,
				MenuItemSnapshot: name,
				UnitPrice:        unit,
				Quantity:         ci.Quantity,
			})
			total = total.Add(ci.Subtotal)
		}

		now := time.Now()
		order := model.Order{
			OrderNumber:         uuid.NewString(),
			UserID:              cart.UserID,
			RestaurantID:        cart.RestaurantID,
			Status:              model.OrderStatusPending,
			TotalAmount:         total,
			DeliveryAddress:     strings.TrimSpace(in.DeliveryAddress),
			PhoneNumber:         strings.TrimSpace(in.PhoneNumber),
			SpecialInstructions: in.SpecialInstructions,
			CreatedAt:           now,
			UpdatedAt:           now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カートを空に戻す（注文と同じTx。片方だけ成功する窓は作らない）
		if err := r.CartItems().DeleteByCartID(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().UpdateTotal(ctx, cart.ID, 0, decimal.Zero); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ステータスの前進遷移。所有者だけが動かせる。
// Confirmed への遷移だけ、コミット後に所有者へ通知を送る。
func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, callerUserID int64, orderID int64, newStatus string) (OrderOutput, error) {
	if callerUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	target, ok := parseOrderStatus(strings.TrimSpace(newStatus))
	if !ok {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if o.UserID != callerUserID {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}

		//キャンセルはこの経路では受けない
		if !canTransition(o.Status, target) {
			return NewHTTPError(http.StatusConflict, "invalid transition")
		}

		now := time.Now()
		if err := r.Orders().UpdateStatus(ctx, orderID, target, now); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o.Status = target
		switch target {
		case model.OrderStatusConfirmed:
			o.ConfirmedAt = &now
		case model.OrderStatusPreparing:
			o.PreparedAt = &now
		case model.OrderStatusCompleted:
			o.CompletedAt = &now
		}
		o.UpdatedAt = now

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//コミット済み。ここから先は失敗しても注文の状態は戻さない。
	if target == model.OrderStatusConfirmed {
		u.notifyOrderConfirmed(ctx, out)
	}

	return out, nil
}

// キャンセル。Completed / Cancelled からは動かせない。
// 他人の注文は「存在しない扱い」。
func (u *OrderUsecase) CancelOrder(ctx context.Context, callerUserID int64, orderID int64, in CancelOrderInput) (OrderOutput, error) {
	if callerUserID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != callerUserID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		if isTerminalStatus(o.Status) {
			return NewHTTPError(http.StatusConflict, "cannot cancel a completed or cancelled order")
		}

		now := time.Now()
		reason := strings.TrimSpace(in.Reason)
		if err := r.Orders().Cancel(ctx, orderID, reason, now); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o.Status = model.OrderStatusCancelled
		o.CancellationReason = reason
		o.CancelledAt = &now
		o.UpdatedAt = now

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 注文詳細。他人の注文は「存在しない扱い」。
func (u *OrderUsecase) GetOrderByID(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 管理者向けの注文詳細。所有チェックなし（ルート側でADMINを確認済み）。
func (u *OrderUsecase) GetOrderForAdmin(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 自分の注文一覧（新しい順）。
func (u *OrderUsecase) ListOrdersByUser(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.listOrders(ctx, func(r repo.TxRepos) ([]model.Order, error) {
		return r.Orders().ListByUserID(ctx, userID)
	})
}

// 店舗の注文一覧（新しい順）。
func (u *OrderUsecase) ListOrdersByRestaurant(ctx context.Context, restaurantID int64) ([]OrderOutput, error) {
	if restaurantID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return u.listOrders(ctx, func(r repo.TxRepos) ([]model.Order, error) {
		return r.Orders().ListByRestaurantID(ctx, restaurantID)
	})
}

// ステータス別の注文一覧（新しい順）。
func (u *OrderUsecase) ListOrdersByStatus(ctx context.Context, status string) ([]OrderOutput, error) {
	st, ok := parseOrderStatus(strings.TrimSpace(status))
	if !ok {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	return u.listOrders(ctx, func(r repo.TxRepos) ([]model.Order, error) {
		return r.Orders().ListByStatus(ctx, st)
	})
}

func (u *OrderUsecase) listOrders(ctx context.Context, fetch func(r repo.TxRepos) ([]model.Order, error)) ([]OrderOutput, error) {
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := fetch(r)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// 確定通知。失敗はWarnログだけ残して飲み込む。
func (u *OrderUsecase) notifyOrderConfirmed(ctx context.Context, o OrderOutput) {
	user, err := u.userRepo.FindByID(ctx, o.UserID)
	if err != nil || user.Email == "" {
		u.logger.Warn("order confirmed but recipient lookup failed",
			zap.Int64("order_id", o.ID),
			zap.Int64("user_id", o.UserID),
			zap.Error(err))
		return
	}

	subject := "Order Confirmation"
	body := renderOrderConfirmedBody(o)

	if err := u.notifier.Send(ctx, user.Email, subject, body); err != nil {
		u.logger.Warn("order confirmation notify failed",
			zap.Int64("order_id", o.ID),
			zap.String("recipient", user.Email),
			zap.Error(err))
	}
}

// 確定メールの本文。
func renderOrderConfirmedBody(o OrderOutput) string {
	return fmt.Sprintf(`<h2>Your Order Has Been Confirmed</h2>
<p>Dear Customer,</p>
<p>Your order %s has been confirmed.</p>
<ul>
<li>Order Number: %s</li>
<li>Total Amount: %s</li>
<li>Delivery Address: %s</li>
<li>Status: %s</li>
</ul>
<p>Thank you for choosing our service!</p>`,
		o.OrderNumber, o.OrderNumber, o.TotalAmount.StringFixed(2), o.DeliveryAddress, o.Status)
}

func validateDeliveryInfo(phone, address string) error {
	if strings.TrimSpace(phone) == "" {
		return NewHTTPError(http.StatusBadRequest, "phone number required")
	}
	if strings.TrimSpace(address) == "" {
		return NewHTTPError(http.StatusBadRequest, "delivery address required")
	}
	return nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderLineOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderLineOutput{
			MenuItemID: it.MenuItemID,
			Name:       it.MenuItemSnapshot,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
		})
	}

	return OrderOutput{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		UserID:              o.UserID,
		RestaurantID:        o.RestaurantID,
		Status:              string(o.Status),
		TotalAmount:         o.TotalAmount,
		DeliveryAddress:     o.DeliveryAddress,
		PhoneNumber:         o.PhoneNumber,
		SpecialInstructions: o.SpecialInstructions,
		CancellationReason:  o.CancellationReason,
		CreatedAt:           o.CreatedAt,
		ConfirmedAt:         o.ConfirmedAt,
		PreparedAt:          o.PreparedAt,
		CompletedAt:         o.CompletedAt,
		CancelledAt:         o.CancelledAt,
		Items:               outItems,
	}
}
