package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"insurance_portal_backend/internal/adapters"
	"insurance_portal_backend/internal/aggregator/client"
	"insurance_portal_backend/internal/bootstrap"
	"insurance_portal_backend/internal/catalog"
	"insurance_portal_backend/internal/events"
	apphttp "insurance_portal_backend/internal/http"
	"insurance_portal_backend/internal/http/router"
	"insurance_portal_backend/internal/offers"
	"insurance_portal_backend/internal/scheduler"
	"insurance_portal_backend/platform/config"
	"insurance_portal_backend/platform/db"
	"insurance_portal_backend/platform/logger"
	"insurance_portal_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	pool, err := bootstrap.Database(ctx, log, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := bootstrap.WithRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	rdb, err := bootstrap.Redis(ctx, log, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	if rdb == nil {
		log.Warn("REDIS_URL not configured; catalog and supersession state kept in memory")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	aggregatorClient := client.New(cfg, log)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	schedulerClient, closeScheduler := initSchedulerClient(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules
	// ========================================================================

	catalogModule := catalog.NewModule(aggregatorClient, rdb, val, cfg, log)
	catalogReader := adapters.NewCatalogProductReader(catalogModule.Service())

	offersModule, err := offers.NewModule(aggregatorClient, catalogReader, pool, rdb, eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize offers module", "error", err)
		panic("failed to initialize offers module: " + err.Error())
	}

	if schedulerClient != nil {
		adapters.NewCatalogDriftHandler(schedulerClient, log).Register(eventBus)
		// Warm the shared cache before the first quote.
		if err := schedulerClient.EnqueueCatalogRefresh(ctx, "startup"); err != nil {
			log.Warn("failed to enqueue catalog warmup", "error", err)
		}
	}

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{catalogModule, offersModule},
	}

	engine := router.New(app)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initSchedulerClient(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; background catalog refresh disabled")
		return nil, nil
	}

	schedulerClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return schedulerClient, func() {
		_ = schedulerClient.Close()
	}
}
