package repository

import (
	"context"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

type CartRepository interface {
	// 無ければ未拘束（restaurant_id=0）の空カートを作る
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByID(ctx context.Context, cartID int64) (model.Cart, error)
	// 合計と店舗拘束をまとめて書く（明細変更のたびに呼ぶ）
	UpdateTotal(ctx context.Context, cartID int64, restaurantID int64, total decimal.Decimal) error
}
