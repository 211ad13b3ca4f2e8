package main

import (
	"fmt"
	"time"

	"shop/internal/config"
	"shop/internal/domain/model"
	"shop/internal/handler"
	"shop/internal/infra/cache"
	"shop/internal/infra/db"
	"shop/internal/infra/eventbus"
	infraRepo "shop/internal/infra/repository"
	"shop/internal/logger"
	"shop/internal/orderstate"
	"shop/internal/server"
	"shop/internal/shipping"
	"shop/internal/shipping/providers"
	"shop/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Address{},
		&model.CheckoutState{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderStatusHistory{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	// Repositories.
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	stateRepo := infraRepo.NewCheckoutStateGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	// Shipping providers come from config; an unknown code is a startup
	// error, not a runtime surprise.
	registry := shipping.NewRegistry()
	for _, code := range cfg.ShippingProviders {
		p, err := buildProvider(code)
		if err != nil {
			log.Fatal("shipping provider config", zap.Error(err))
		}
		if err := registry.Register(p); err != nil {
			log.Fatal("shipping provider registration", zap.Error(err))
		}
	}
	aggregator := shipping.NewAggregator(registry, log)

	var quoteCache cache.QuoteCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		quoteCache = cache.NewRedisQuoteCache(client, 5*time.Minute)
		log.Info("quote cache: redis", zap.String("addr", cfg.RedisAddr))
	} else {
		quoteCache = cache.NewMemoryQuoteCache(5 * time.Minute)
		log.Info("quote cache: in-memory")
	}

	// State machine with its side effects.
	machine := orderstate.NewMachine(orderstate.DefaultTable(), log)
	machine.RegisterHook(orderstate.RestockOnCancel())
	if len(cfg.KafkaBrokers) > 0 {
		producer := eventbus.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		defer producer.Close()
		machine.RegisterHook(orderstate.PublishEvents(producer, log))
		log.Info("order events: kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	// Usecases.
	authUC := usecase.NewAuthUsecase(cfg, userRepo, cartRepo, log)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo, quoteCache, log)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	checkoutUC := usecase.NewCheckoutUsecase(
		txManager,
		cartRepo,
		cartRepo,
		addressRepo,
		productRepo,
		stateRepo,
		aggregator,
		quoteCache,
		machine,
		cfg.TaxRateBP,
		cfg.PaymentMethods,
		log,
	)
	orderUC := usecase.NewOrderUsecase(txManager, machine)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, machine, auditRepo)

	// HTTP.
	e := server.New(log)
	server.RegisterRoutes(e, cfg, server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		Product:      handler.NewProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC),
		Address:      handler.NewAddressHandler(addressUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
	})

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr))
	if err := server.Start(e, addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// buildProvider maps a config code to a provider with its stock rates.
func buildProvider(code string) (shipping.Provider, error) {
	switch code {
	case "flat_rate":
		return providers.NewFlatRate(500, 1200), nil
	case "tiered_rate":
		return providers.NewTieredRate([]providers.Tier{
			{MaxItems: 3, Fee: 400},
			{MaxItems: 10, Fee: 700},
		}), nil
	case "free_shipping":
		return providers.NewFreeShipping(5000), nil
	default:
		return nil, fmt.Errorf("unknown shipping provider %q", code)
	}
}
