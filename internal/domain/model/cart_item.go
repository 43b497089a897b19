package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細。
// Subtotal は最後に書いた時点の「単価×数量」を必ず保存。
type CartItem struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID     int64           `gorm:"not null;index" json:"cart_id"`
	MenuItemID int64           `gorm:"not null;index" json:"menu_item_id"`
	Quantity   int64           `gorm:"not null" json:"quantity"`
	Subtotal   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"subtotal"`
	Note       string          `gorm:"type:varchar(500)" json:"note"`
	CreatedAt  time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
