package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// 1ユーザー1カート。カートは最初の1品の店舗に拘束される。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	menuRepo     repo.MenuItemRepository
	restRepo     repo.RestaurantRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	menuRepo repo.MenuItemRepository,
	restRepo repo.RestaurantRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		menuRepo:     menuRepo,
		restRepo:     restRepo,
	}
}

// スナップショットの明細。unit_price は小計÷数量（最後に書いた時点の単価）。
type CartLineResponse struct {
	ID         int64           `json:"id"`
	MenuItemID int64           `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int64           `json:"quantity"`
	Note       string          `json:"note,omitempty"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// カートのスナップショット。表示とチェックアウト入力の両方に使う。
type CartResponse struct {
	ID             int64              `json:"id"`
	RestaurantID   int64              `json:"restaurant_id"`
	RestaurantName string             `json:"restaurant_name"`
	Items          []CartLineResponse `json:"items"`
	Total          decimal.Decimal    `json:"total"`
}

type AddItemInput struct {
	RestaurantID int64
	MenuItemID   int64
	Quantity     int64
	Note         string
}

type UpdateLineInput struct {
	Quantity int64
	Note     string
}

// カート取得。まだカートが無ければ空のスナップショットを返す
// （カート行を作るのは最初のAddItemだけ）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return emptyCartResponse(), nil
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart)
}

// カートIDでスナップショット取得（チェックアウト入力用）。
// 他人のカートは「存在しない扱い」。
func (u *CartUsecase) GetCartByID(ctx context.Context, userID int64, cartID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	cart, err := u.cartRepo.FindByID(ctx, cartID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if cart.UserID != userID {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}

	return u.buildCartResponse(ctx, cart)
}

// カートに追加。
// 同一メニューは数量加算＋メモ上書き。小計は今のメニュー価格×新数量で引き直す。
// 別店舗に拘束済みのカートへの追加は409で拒否する（黙って捨てない）。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddItemInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.RestaurantID <= 0 || in.MenuItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	//メニューチェック
	m, err := u.menuRepo.FindByID(ctx, in.MenuItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "menu item not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !m.IsAvailable {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "menu item not available")
	}
	if m.RestaurantID != in.RestaurantID {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "menu item not in this restaurant")
	}

	//カート取得（無ければ作成）
	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//店舗拘束チェック
	if cart.RestaurantID != 0 && cart.RestaurantID != in.RestaurantID {
		return CartResponse{}, NewHTTPError(http.StatusConflict, "cart is bound to another restaurant")
	}

	qtyDec := func(q int64) decimal.Decimal { return decimal.NewFromInt(q) }

	existing, err := u.cartItemRepo.FindByCartAndMenuItem(ctx, cart.ID, in.MenuItemID)
	if err == nil {
		//既存明細：数量加算、メモ上書き
		existing.Quantity += in.Quantity
		existing.Subtotal = m.Price.Mul(qtyDec(existing.Quantity))
		existing.Note = in.Note
		if err := u.cartItemRepo.Update(ctx, existing); err != nil {
			return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	} else if err == repo.ErrNotFound {
		//新規明細
		_, err := u.cartItemRepo.Create(ctx, model.CartItem{
			CartID:     cart.ID,
			MenuItemID: in.MenuItemID,
			Quantity:   in.Quantity,
			Subtotal:   m.Price.Mul(qtyDec(in.Quantity)),
			Note:       in.Note,
		})
		if err != nil {
			return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	} else {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart.RestaurantID = in.RestaurantID
	return u.recomputeAndBuild(ctx, cart)
}

// 数量・メモの変更（所有チェックつき）。
// 小計は今のメニュー価格×新数量で引き直す。
func (u *CartUsecase) UpdateLine(ctx context.Context, userID int64, cartItemID int64, in UpdateLineInput) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	m, err := u.menuRepo.FindByID(ctx, item.MenuItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	item.Quantity = in.Quantity
	item.Subtotal = m.Price.Mul(decimal.NewFromInt(in.Quantity))
	item.Note = in.Note

	if err := u.cartItemRepo.Update(ctx, item); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.cartRepo.FindByID(ctx, item.CartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.recomputeAndBuild(ctx, cart)
}

// 明細削除（所有チェックつき）。
func (u *CartUsecase) RemoveLine(ctx context.Context, userID int64, cartItemID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.cartRepo.FindByID(ctx, item.CartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.recomputeAndBuild(ctx, cart)
}

// 全明細を消して合計を0に戻す。カート行自体は残る。
// カートがまだ無いときは false。
func (u *CartUsecase) Clear(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if err == repo.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.DeleteByCartID(ctx, cart.ID); err != nil {
		return false, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//空になったので店舗拘束も解く
	if err := u.cartRepo.UpdateTotal(ctx, cart.ID, 0, decimal.Zero); err != nil {
		return false, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return true, nil
}

// 明細変更後の合計引き直し＋スナップショット作成。
// 不変条件: total == Σ subtotal。空になったら店舗拘束を0に戻す。
func (u *CartUsecase) recomputeAndBuild(ctx context.Context, cart model.Cart) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}

	restaurantID := cart.RestaurantID
	if len(items) == 0 {
		restaurantID = 0
	}

	if err := u.cartRepo.UpdateTotal(ctx, cart.ID, restaurantID, total); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart.RestaurantID = restaurantID
	cart.TotalPrice = total
	return u.buildCartResponse(ctx, cart)
}

// 保存済みのカート行と明細からスナップショットを組み立てる。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cart model.Cart) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	restaurantName := ""
	if cart.RestaurantID != 0 {
		if rest, err := u.restRepo.FindByID(ctx, cart.RestaurantID); err == nil {
			restaurantName = rest.Name
		}
	}

	respItems := make([]CartLineResponse, 0, len(items))
	for _, it := range items {
		name := ""
		if m, err := u.menuRepo.FindByID(ctx, it.MenuItemID); err == nil {
			name = m.Name
		}

		unit := decimal.Zero
		if it.Quantity > 0 {
			unit = it.Subtotal.Div(decimal.NewFromInt(it.Quantity))
		}

		respItems = append(respItems, CartLineResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       name,
			UnitPrice:  unit,
			Quantity:   it.Quantity,
			Note:       it.Note,
			Subtotal:   it.Subtotal,
		})
	}

	return CartResponse{
		ID:             cart.ID,
		RestaurantID:   cart.RestaurantID,
		RestaurantName: restaurantName,
		Items:          respItems,
		Total:          cart.TotalPrice,
	}, nil
}

func emptyCartResponse() CartResponse {
	return CartResponse{
		Items: []CartLineResponse{},
		Total: decimal.Zero,
	}
}
