package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return 0, err
	}
	return order.ID, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	return r.list(ctx, "user_id = ?", userID)
}

func (r *OrderGormRepository) ListByRestaurantID(ctx context.Context, restaurantID int64) ([]model.Order, error) {
	return r.list(ctx, "restaurant_id = ?", restaurantID)
}

func (r *OrderGormRepository) ListByStatus(ctx context.Context, status model.OrderStatus) ([]model.Order, error) {
	return r.list(ctx, "status = ?", status)
}

// 新しい順で一覧
func (r *OrderGormRepository) list(ctx context.Context, cond string, arg interface{}) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("created_at desc").
		Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

// ステータス列ごとのタイムスタンプ列
func statusTimestampColumn(status model.OrderStatus) string {
	switch status {
	case model.OrderStatusConfirmed:
		return "confirmed_at"
	case model.OrderStatusPreparing:
		return "prepared_at"
	case model.OrderStatusCompleted:
		return "completed_at"
	default:
		return ""
	}
}

// ステータスと対応するタイムスタンプを1回のUPDATEで書く
func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, at time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": at,
	}
	if col := statusTimestampColumn(status); col != "" {
		updates[col] = at
	}

	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(updates)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// キャンセル確定（理由つき）
func (r *OrderGormRepository) Cancel(ctx context.Context, orderID int64, reason string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":              model.OrderStatusCancelled,
			"cancellation_reason": reason,
			"cancelled_at":        at,
			"updated_at":          at,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
