package db

import (
	"os"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 初回起動用のシード。
// ADMIN_EMAIL / ADMIN_PASSWORD があれば管理ユーザーを作る。
func SeedAdmin(gormDB *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	pass := os.Getenv("ADMIN_PASSWORD")
	if email == "" || pass == "" {
		return nil
	}

	var count int64
	if err := gormDB.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	return gormDB.Create(&admin).Error
}

// デモ用の店舗とメニュー。既に店舗があれば何もしない。
func SeedDemoCatalog(gormDB *gorm.DB) error {
	var count int64
	if err := gormDB.Model(&model.Restaurant{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	r := model.Restaurant{
		Name:        "Demo Kitchen",
		Description: "Sample restaurant for local development",
		Address:     "1-2-3 Sample St",
		PhoneNumber: "000-0000-0000",
	}
	if err := gormDB.Create(&r).Error; err != nil {
		return err
	}

	items := []model.MenuItem{
		{RestaurantID: r.ID, Name: "Margherita Pizza", Price: decimal.RequireFromString("10.00"), IsAvailable: true},
		{RestaurantID: r.ID, Name: "Caesar Salad", Price: decimal.RequireFromString("5.00"), IsAvailable: true},
		{RestaurantID: r.ID, Name: "Lemonade", Price: decimal.RequireFromString("2.50"), IsAvailable: true},
	}
	return gormDB.Create(&items).Error
}
