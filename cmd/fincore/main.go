package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/fincore/internal/accounts"
	"github.com/odyssey-erp/fincore/internal/app"
	"github.com/odyssey-erp/fincore/internal/assets"
	"github.com/odyssey-erp/fincore/internal/banking"
	"github.com/odyssey-erp/fincore/internal/ledger"
	"github.com/odyssey-erp/fincore/internal/observability"
	"github.com/odyssey-erp/fincore/internal/platform/cache"
	"github.com/odyssey-erp/fincore/internal/platform/db"
	"github.com/odyssey-erp/fincore/internal/platform/migrations"
	"github.com/odyssey-erp/fincore/internal/shared"
	"github.com/odyssey-erp/fincore/internal/tax"
	"github.com/odyssey-erp/fincore/jobs"
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

	if cfg.DBAutoMigrate {
		if err := migrations.Up(cfg.PGDSN, logger); err != nil {
			logger.Error("run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	transactor := db.NewTransactor(pool)

	metrics := observability.NewMetrics()
	finance := observability.NewFinanceMetrics(metrics.Registerer())
	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	accountRepo := accounts.NewRepository(pool)
	var directory accounts.Directory = accountRepo
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, account lookups are not cached", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		directory = accounts.NewCachedDirectory(accountRepo, redisClient, cfg.AccountCacheTTL, logger)
	}

	ledgerService := ledger.NewService(ledger.NewRepository(pool, transactor), auditLogger, finance)
	assetService := assets.NewService(
		assets.NewRepository(pool, transactor),
		ledgerService,
		directory,
		assets.UntrackedReserve{Logger: logger},
		logger,
	)
	bankingService := banking.NewService(banking.NewRepository(pool, transactor), idempotencyStore, logger)
	taxService := tax.NewService(
		tax.NewRepository(pool, transactor),
		tax.NewDocumentRepository(pool),
		ledgerService,
		bankingService,
		directory,
		idempotencyStore,
		logger,
	).WithRates(cfg.TaxRates()).WithMetrics(finance)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	asynqClient := asynq.NewClient(redisOpts)
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		LedgerHandler:  ledger.NewHandler(logger, ledgerService),
		AssetsHandler:  assets.NewHandler(logger, assetService),
		BankingHandler: banking.NewHandler(logger, bankingService),
		TaxHandler:     tax.NewHandler(logger, taxService),
		JobHandler:     jobs.NewHandler(inspector, jobs.NewClient(asynqClient), logger),
		Metrics:        metrics,
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
