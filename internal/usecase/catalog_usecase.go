package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 店舗とメニューの読み取り。公開APIなので認証は要らない。
type CatalogUsecase struct {
	restRepo repo.RestaurantRepository
	menuRepo repo.MenuItemRepository
}

func NewCatalogUsecase(restRepo repo.RestaurantRepository, menuRepo repo.MenuItemRepository) *CatalogUsecase {
	return &CatalogUsecase{restRepo: restRepo, menuRepo: menuRepo}
}

func (u *CatalogUsecase) ListRestaurants(ctx context.Context) ([]model.Restaurant, error) {
	list, err := u.restRepo.ListPublic(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if list == nil {
		list = []model.Restaurant{}
	}
	return list, nil
}

func (u *CatalogUsecase) GetRestaurant(ctx context.Context, restaurantID int64) (model.Restaurant, error) {
	if restaurantID <= 0 {
		return model.Restaurant{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := u.restRepo.FindByID(ctx, restaurantID)
	if err == repo.ErrNotFound {
		return model.Restaurant{}, NewHTTPError(http.StatusNotFound, "restaurant not found")
	}
	if err != nil {
		return model.Restaurant{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return r, nil
}

// 店舗のメニュー一覧。店舗が存在しなければ404。
func (u *CatalogUsecase) ListMenu(ctx context.Context, restaurantID int64) ([]model.MenuItem, error) {
	if restaurantID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if _, err := u.restRepo.FindByID(ctx, restaurantID); err != nil {
		if err == repo.ErrNotFound {
			return nil, NewHTTPError(http.StatusNotFound, "restaurant not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.menuRepo.ListByRestaurantID(ctx, restaurantID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if items == nil {
		items = []model.MenuItem{}
	}
	return items, nil
}
