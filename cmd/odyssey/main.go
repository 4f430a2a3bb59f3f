package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-comercial/internal/app"
	"github.com/odyssey-erp/odyssey-comercial/internal/observability"
	"github.com/odyssey-erp/odyssey-comercial/internal/permissions"
	"github.com/odyssey-erp/odyssey-comercial/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-comercial/internal/platform/db"
	"github.com/odyssey-erp/odyssey-comercial/internal/pricing"
	"github.com/odyssey-erp/odyssey-comercial/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	permissionsRepo := permissions.NewRepository(dbpool)
	permissionsCache := permissions.NewCache(redisClient, cfg.PermissionsCacheTTL)
	permissionsService := permissions.NewService(permissionsRepo, permissionsCache, logger)

	var fetcher permissions.Fetcher = permissionsService
	if cfg.RemoteAuthz() {
		logger.Info("using remote authorization service", slog.String("url", cfg.AuthzURL))
		fetcher = permissions.NewClient(cfg.AuthzURL, cfg.AuthzTimeout, logger)
	}
	permissionsMiddleware := permissions.Middleware{Fetcher: fetcher, Logger: logger}
	permissionsHandler := permissions.NewHandler(logger, permissionsService, permissionsMiddleware)

	pricingRepo := pricing.NewRepository(dbpool)
	simulationStore := pricing.NewSimulationStore(redisClient, cfg.SimulationTTL)
	pricingService := pricing.NewService(pricingRepo, simulationStore, pricing.ServiceConfig{
		ClampNegative: cfg.PricingClampNegative,
		Locale:        cfg.PricingLocale,
	}, pricing.NewMetrics(metrics.Registerer()))
	pricingHandler := pricing.NewHandler(logger, pricingService, permissionsMiddleware)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(jobs.HandlerConfig{
		Inspector: inspector,
		Enqueuer:  jobsClient,
		Guard:     permissionsMiddleware.Require(permissions.MenuPermissions, permissions.Modify),
		Logger:    logger,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		PermissionsHandler: permissionsHandler,
		PricingHandler:     pricingHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
		Ready: func(r *http.Request) error {
			return errors.Join(dbpool.Ping(r.Context()), redisClient.Ping(r.Context()).Err())
		},
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: cfg.AppReadTimeout,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
