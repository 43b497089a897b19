package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type MenuItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewMenuItemGormRepository(db *gorm.DB) *MenuItemGormRepository {
	return &MenuItemGormRepository{db: db}
}

// IDでメニューを1件取得
func (r *MenuItemGormRepository) FindByID(ctx context.Context, menuItemID int64) (model.MenuItem, error) {
	var m model.MenuItem
	err := r.db.WithContext(ctx).First(&m, menuItemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.MenuItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.MenuItem{}, err
	}
	return m, nil
}

// 店舗のメニューを一覧取得（提供停止中も含めて返す。弾くのはカート側）
func (r *MenuItemGormRepository) ListByRestaurantID(ctx context.Context, restaurantID int64) ([]model.MenuItem, error) {
	var items []model.MenuItem
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.MenuItem{}, err
	}
	return items, nil
}
