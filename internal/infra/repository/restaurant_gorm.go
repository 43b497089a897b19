package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type RestaurantGormRepository struct {
	db *gorm.DB
}

// DI
func NewRestaurantGormRepository(db *gorm.DB) *RestaurantGormRepository {
	return &RestaurantGormRepository{db: db}
}

func (r *RestaurantGormRepository) ListPublic(ctx context.Context) ([]model.Restaurant, error) {
	var list []model.Restaurant
	err := r.db.WithContext(ctx).Order("id asc").Find(&list).Error
	if err != nil {
		return []model.Restaurant{}, err
	}
	return list, nil
}

func (r *RestaurantGormRepository) FindByID(ctx context.Context, restaurantID int64) (model.Restaurant, error) {
	var rest model.Restaurant
	err := r.db.WithContext(ctx).First(&rest, restaurantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Restaurant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Restaurant{}, err
	}
	return rest, nil
}
