package repository

import (
	"context"

	"app/internal/domain/model"
)

type RestaurantRepository interface {
	ListPublic(ctx context.Context) ([]model.Restaurant, error)
	FindByID(ctx context.Context, restaurantID int64) (model.Restaurant, error)
}
