package main

import (
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/notification"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envはローカル開発用。無ければ環境変数だけで動く
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.GoEnv == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Restaurant{},
		&model.MenuItem{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	if err := db.SeedAdmin(gormDB); err != nil {
		logger.Fatal("seed admin failed", zap.Error(err))
	}
	if err := db.SeedDemoCatalog(gormDB); err != nil {
		logger.Fatal("seed catalog failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	restRepo := infraRepo.NewRestaurantGormRepository(gormDB)
	menuRepo := infraRepo.NewMenuItemGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//通知
	notifier := notification.NewSMTPNotifier(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom,
		logger,
	)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo)
	catalogUC := usecase.NewCatalogUsecase(restRepo, menuRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, menuRepo, restRepo)
	orderUC := usecase.NewOrderUsecase(txManager, userRepo, notifier, logger)

	//Handler生成
	handlers := server.Handlers{
		Auth:       handler.NewAuthHandler(authUC),
		Restaurant: handler.NewRestaurantHandler(catalogUC),
		Cart:       handler.NewCartHandler(cartUC),
		Order:      handler.NewOrderHandler(orderUC),
		AdminOrder: handler.NewAdminOrderHandler(orderUC),
	}

	e := server.New(cfg, handlers)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := server.Start(e, cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
