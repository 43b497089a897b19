package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 1ユーザーにつきカートは1行。行は消さず、空にするだけ。
// RestaurantID は最初の1品で決まり、空に戻ると0（未拘束）に戻る。
type Cart struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64           `gorm:"not null;uniqueIndex" json:"user_id"`
	RestaurantID int64           `gorm:"not null;default:0;index" json:"restaurant_id"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"total_price"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
