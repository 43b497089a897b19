package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// メニュー1品。価格は注文時にスナップショットされるので、
// ここを後から変えても既存の注文明細には影響しない。
type MenuItem struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID int64           `gorm:"not null;index" json:"restaurant_id"`
	Name         string          `gorm:"type:varchar(100);not null" json:"name"`
	Description  string          `gorm:"type:varchar(500)" json:"description"`
	Price        decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"price"`
	IsAvailable  bool            `gorm:"not null;default:true" json:"is_available"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
