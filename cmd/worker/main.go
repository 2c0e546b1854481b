package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/odyssey-erp/fincore/internal/accounts"
	"github.com/odyssey-erp/fincore/internal/app"
	"github.com/odyssey-erp/fincore/internal/assets"
	"github.com/odyssey-erp/fincore/internal/ledger"
	"github.com/odyssey-erp/fincore/internal/observability"
	"github.com/odyssey-erp/fincore/internal/platform/cache"
	"github.com/odyssey-erp/fincore/internal/platform/db"
	"github.com/odyssey-erp/fincore/internal/shared"
	"github.com/odyssey-erp/fincore/jobs"
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	transactor := db.NewTransactor(pool)

	accountRepo := accounts.NewRepository(pool)
	var directory accounts.Directory = accountRepo
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		directory = accounts.NewCachedDirectory(accountRepo, redisClient, cfg.AccountCacheTTL, logger)
	}

	// The worker exposes no /metrics endpoint; counters stay process-local.
	finance := observability.NewFinanceMetrics(prometheus.NewRegistry())
	idempotencyStore := shared.NewIdempotencyStore(pool)
	ledgerService := ledger.NewService(ledger.NewRepository(pool, transactor), shared.NewAuditLogger(pool), finance)
	assetService := assets.NewService(
		assets.NewRepository(pool, transactor),
		ledgerService,
		directory,
		assets.UntrackedReserve{Logger: logger},
		logger,
	)

	depreciationJob := jobs.NewDepreciationRunJob(assetService, finance, logger, nil)
	cleanupJob := jobs.NewIdempotencyCleanupJob(idempotencyStore, cfg.IdempotencyRetention, logger)

	cron, err := jobs.DepreciationCron(cfg.DepreciationCron, cfg.DepreciationOrganizations)
	if err != nil {
		logger.Error("build depreciation schedule", slog.Any("error", err))
		os.Exit(1)
	}
	cron = append(cron, jobs.CronRegistration{Spec: "30 3 * * *", Task: jobs.NewIdempotencyCleanupTask()})

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDepreciationRun, Handler: depreciationJob.Handle},
			{Type: jobs.TaskIdempotencyCleanup, Handler: cleanupJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
