package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/aurumpos/aurumpos/internal/app"
	"github.com/aurumpos/aurumpos/internal/ledger"
	"github.com/aurumpos/aurumpos/internal/platform/cache"
	"github.com/aurumpos/aurumpos/internal/platform/db"
	"github.com/aurumpos/aurumpos/internal/pricing"
	"github.com/aurumpos/aurumpos/internal/shared"
	"github.com/aurumpos/aurumpos/internal/shops"
	"github.com/aurumpos/aurumpos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, auditLogger, nil)

	shopsRepo := shops.NewRepository(pool)
	shopsService := shops.NewService(shopsRepo, auditLogger)

	rateRepo := pricing.NewRepository(pool)
	rateService := pricing.NewRateService(rateRepo, redisClient, cfg.RateCacheTTL, auditLogger)

	auditTask, err := jobs.NewLedgerAuditTask(jobs.LedgerAuditPayload{})
	if err != nil {
		logger.Error("build ledger audit task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerAudit, Handler: jobs.NewLedgerAuditHandler(logger, ledgerService, shopsService)},
			{Type: jobs.TaskRateStaleScan, Handler: jobs.NewRateStaleScanHandler(logger, rateService, shopsService, cfg.RateStaleAfter)},
			{Type: jobs.TaskIdempotencyCleanup, Handler: jobs.NewIdempotencyCleanupHandler(logger, idempotencyStore)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 2 * * *", Task: auditTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 */6 * * *", Task: jobs.NewRateStaleScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 3 * * *", Task: jobs.NewIdempotencyCleanupTask()},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker")
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
