package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aurumpos/aurumpos/internal/app"
	"github.com/aurumpos/aurumpos/internal/auth"
	"github.com/aurumpos/aurumpos/internal/catalog"
	"github.com/aurumpos/aurumpos/internal/ledger"
	"github.com/aurumpos/aurumpos/internal/observability"
	"github.com/aurumpos/aurumpos/internal/platform/cache"
	"github.com/aurumpos/aurumpos/internal/platform/db"
	"github.com/aurumpos/aurumpos/internal/pricing"
	"github.com/aurumpos/aurumpos/internal/products"
	"github.com/aurumpos/aurumpos/internal/reports"
	"github.com/aurumpos/aurumpos/internal/shared"
	"github.com/aurumpos/aurumpos/internal/shops"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)
	metrics := observability.NewMetrics()

	tokenStore := auth.NewTokenStore(redisClient, cfg.TokenTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokenStore)
	authMW := auth.Middleware{Tokens: tokenStore, Logger: logger}
	authHandler := auth.NewHandler(logger, authService, authMW)

	shopsRepo := shops.NewRepository(pool)
	shopsService := shops.NewService(shopsRepo, auditLogger)
	shopsHandler := shops.NewHandler(logger, shopsService, authMW)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService, authMW)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, auditLogger, metrics)
	ledgerHandler := ledger.NewHandler(logger, ledgerService, authMW, idempotencyStore)

	rateRepo := pricing.NewRepository(pool)
	rateService := pricing.NewRateService(rateRepo, redisClient, cfg.RateCacheTTL, auditLogger)
	pricingHandler := pricing.NewHandler(logger, rateService, authMW)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo, catalogService, ledgerService, rateService, auditLogger)
	productsHandler := products.NewHandler(logger, productsService, authMW)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo, rateService, shopsService, ledgerService)
	reportsHandler := reports.NewHandler(logger, reportsService, authMW)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthMiddleware:  authMW,
		AuthHandler:     authHandler,
		ShopsHandler:    shopsHandler,
		CatalogHandler:  catalogHandler,
		ProductsHandler: productsHandler,
		PricingHandler:  pricingHandler,
		LedgerHandler:   ledgerHandler,
		ReportsHandler:  reportsHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
