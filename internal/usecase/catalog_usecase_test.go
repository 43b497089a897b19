package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogUsecase_ListRestaurants_EmptyIsNotNil(t *testing.T) {
	restRepo := new(RestRepoMock)
	menuRepo := new(MenuRepoMock)
	ctx := context.Background()

	restRepo.On("ListPublic", ctx).Return([]model.Restaurant(nil), nil)

	uc := usecase.NewCatalogUsecase(restRepo, menuRepo)
	out, err := uc.ListRestaurants(ctx)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestCatalogUsecase_GetRestaurant_NotFound(t *testing.T) {
	restRepo := new(RestRepoMock)
	menuRepo := new(MenuRepoMock)
	ctx := context.Background()

	restRepo.On("FindByID", ctx, int64(99)).Return(model.Restaurant{}, repo.ErrNotFound)

	uc := usecase.NewCatalogUsecase(restRepo, menuRepo)
	_, err := uc.GetRestaurant(ctx, 99)
	assertHTTPStatus(t, err, 404)
}

func TestCatalogUsecase_ListMenu_UnknownRestaurant(t *testing.T) {
	restRepo := new(RestRepoMock)
	menuRepo := new(MenuRepoMock)
	ctx := context.Background()

	restRepo.On("FindByID", ctx, int64(99)).Return(model.Restaurant{}, repo.ErrNotFound)

	uc := usecase.NewCatalogUsecase(restRepo, menuRepo)
	_, err := uc.ListMenu(ctx, 99)
	assertHTTPStatus(t, err, 404)
}

func TestCatalogUsecase_ListMenu(t *testing.T) {
	restRepo := new(RestRepoMock)
	menuRepo := new(MenuRepoMock)
	ctx := context.Background()

	restRepo.On("FindByID", ctx, int64(10)).Return(model.Restaurant{ID: 10, Name: "Demo Kitchen"}, nil)
	menuRepo.On("ListByRestaurantID", ctx, int64(10)).Return([]model.MenuItem{
		pizzaMenuItem(),
	}, nil)

	uc := usecase.NewCatalogUsecase(restRepo, menuRepo)
	out, err := uc.ListMenu(ctx, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Margherita Pizza", out[0].Name)
}
