package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	FindByCartAndMenuItem(ctx context.Context, cartID int64, menuItemID int64) (model.CartItem, error)
	Create(ctx context.Context, item model.CartItem) (model.CartItem, error)
	// 数量・小計・メモをまとめて更新
	Update(ctx context.Context, item model.CartItem) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	DeleteByCartID(ctx context.Context, cartID int64) error
	IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error)
}
