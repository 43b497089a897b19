package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。作成後は不変。
// 名前と単価は注文時点のスナップショット。
type OrderItem struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID          int64           `gorm:"not null;index" json:"order_id"`
	MenuItemID       int64           `gorm:"not null;index" json:"menu_item_id"`
	MenuItemSnapshot string          `gorm:"type:varchar(100);not null;column:menu_item_snapshot" json:"menu_item_snapshot"`
	UnitPrice        decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"unit_price"`
	Quantity         int64           `gorm:"not null" json:"quantity"`
	CreatedAt        time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
