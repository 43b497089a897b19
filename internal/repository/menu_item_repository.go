package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// メニューの読み取り専用カタログ。
// 書き込み系の管理APIはこのリポジトリのスコープ外。
type MenuItemRepository interface {
	FindByID(ctx context.Context, menuItemID int64) (model.MenuItem, error)
	ListByRestaurantID(ctx context.Context, restaurantID int64) ([]model.MenuItem, error)
}
