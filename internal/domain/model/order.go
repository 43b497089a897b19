package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusPreparing OrderStatus = "Preparing"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// 注文。作成後はステータス遷移でしか変わらない。削除もしない。
// TotalAmount は作成時に確定し、以後は再計算しない。
// 各タイムスタンプは一度入ったら消さない。
type Order struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber         string          `gorm:"type:varchar(36);not null;uniqueIndex" json:"order_number"`
	UserID              int64           `gorm:"not null;index" json:"user_id"`
	RestaurantID        int64           `gorm:"not null;index" json:"restaurant_id"`
	Status              OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalAmount         decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total_amount"`
	DeliveryAddress     string          `gorm:"type:varchar(200);not null" json:"delivery_address"`
	PhoneNumber         string          `gorm:"type:varchar(15);not null" json:"phone_number"`
	SpecialInstructions string          `gorm:"type:varchar(500)" json:"special_instructions"`
	CancellationReason  string          `gorm:"type:varchar(200)" json:"cancellation_reason"`
	ConfirmedAt         *time.Time      `json:"confirmed_at"`
	PreparedAt          *time.Time      `json:"prepared_at"`
	CompletedAt         *time.Time      `json:"completed_at"`
	CancelledAt         *time.Time      `json:"cancelled_at"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
