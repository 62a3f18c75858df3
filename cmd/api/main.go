package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shoptools/shoptools-go/api/routes"
	"github.com/shoptools/shoptools-go/internal/cart"
	"github.com/shoptools/shoptools-go/internal/catalogue"
	"github.com/shoptools/shoptools-go/internal/checkout"
	"github.com/shoptools/shoptools-go/internal/orders"
	"github.com/shoptools/shoptools-go/internal/shipping"
	"github.com/shoptools/shoptools-go/internal/vouchers"
	"github.com/shoptools/shoptools-go/pkg/config"
	"github.com/shoptools/shoptools-go/pkg/db"
	"github.com/shoptools/shoptools-go/pkg/logger"
	"github.com/shoptools/shoptools-go/pkg/metrics"
	"github.com/shoptools/shoptools-go/pkg/migrate"
	"github.com/shoptools/shoptools-go/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	productRepo := catalogue.NewProductRepository(dbClient.DB())
	registry := catalogue.NewRegistry()
	catalogue.RegisterProducts(registry, productRepo)

	flatRate, err := shipping.NewFlatRate(cfg.Shipping)
	if err != nil {
		logg.Error(context.Background(), "failed to configure shipping", err)
		os.Exit(1)
	}

	voucherService, err := vouchers.NewService(vouchers.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create voucher service", err)
		os.Exit(1)
	}

	sessionStore := cart.NewSessionStore(
		redisClient,
		cfg.Session.CartTTL,
		registry,
		cart.WithShipping(flatRate),
		cart.WithDiscounts(voucherService),
	)

	ordersRepo := orders.NewRepository(dbClient.DB())
	checkoutService, err := checkout.NewService(
		dbClient,
		ordersRepo,
		registry,
		checkout.WithShipping(flatRate),
		checkout.WithDiscounts(voucherService),
		checkout.WithPurchaseHook(checkout.ProductStockHook(productRepo)),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	registryProm := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetrics(registryProm)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Deps{
			DB:           dbClient,
			Redis:        redisClient,
			SessionStore: sessionStore,
			Checkout:     checkoutService,
			OrdersRepo:   ordersRepo,
			ProductRepo:  productRepo,
			CartMetrics:  cartMetrics,
			Gatherer:     registryProm,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
