package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order model.Order) (int64, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	// 一覧はすべて作成時刻の新しい順
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	ListByRestaurantID(ctx context.Context, restaurantID int64) ([]model.Order, error)
	ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error)

	// ステータスと対応するタイムスタンプ列を1回のUPDATEで書く
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, at time.Time) error
	Cancel(ctx context.Context, orderID int64, reason string, at time.Time) error
}
