package main

import (
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/logging"
	"app/internal/infra/payment"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envはあれば読む（本番は環境変数だけ）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.GoEnv)
	defer func() { _ = logger.Sync() }()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.PendingRegistration{},
		&model.Plant{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Address{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserRepository(gormDB)
	pendingRepo := infraRepo.NewPendingRegistrationGormRepository(gormDB)
	plantRepo := infraRepo.NewPlantGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//決済ゲートウェイ
	gw := payment.NewClient(cfg.RazorpayAPIURL, cfg.RazorpayKeyID, cfg.RazorpayKeySecret, logger)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, userRepo, pendingRepo)
	plantUC := usecase.NewPlantUsecase(plantRepo, inventoryRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, plantRepo)
	orderUC := usecase.NewOrderUsecase(txManager, addressRepo, gw)
	paymentUC := usecase.NewPaymentUsecase(cartRepo, cartItemRepo, plantRepo, gw)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo)

	//Handler生成
	h := server.Handlers{
		Auth:       handler.NewAuthHandler(authUC),
		Plant:      handler.NewPlantHandler(plantUC),
		Cart:       handler.NewCartHandler(cartUC),
		Order:      handler.NewOrderHandler(orderUC),
		Payment:    handler.NewPaymentHandler(paymentUC),
		Address:    handler.NewAddressHandler(addressUC),
		AdminPlant: handler.NewAdminPlantHandler(plantUC),
		AdminOrder: handler.NewAdminOrderHandler(adminOrderUC),
	}

	//Server起動
	e := server.New(logger)
	server.RegisterRoutes(e, cfg, h)

	addr := ":" + cfg.Port
	logger.Info("server starting", zap.String("addr", addr))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
