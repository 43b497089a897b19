package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders      repo.OrderRepository
	orderItems  repo.OrderItemRepository
	carts       repo.CartRepository
	cartItems   repo.CartItemRepository
	menuItems   repo.MenuItemRepository
	restaurants repo.RestaurantRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository           { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository   { return r.orderItems }
func (r *txReposGorm) Carts() repo.CartRepository             { return r.carts }
func (r *txReposGorm) CartItems() repo.CartItemRepository     { return r.cartItems }
func (r *txReposGorm) MenuItems() repo.MenuItemRepository     { return r.menuItems }
func (r *txReposGorm) Restaurants() repo.RestaurantRepository { return r.restaurants }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:      NewOrderGormRepository(tx),
			orderItems:  NewOrderItemGormRepository(tx),
			carts:       NewCartGormRepository(tx),
			cartItems:   NewCartItemGormRepository(tx),
			menuItems:   NewMenuItemGormRepository(tx),
			restaurants: NewRestaurantGormRepository(tx),
		}
		return fn(r)
	})
}
