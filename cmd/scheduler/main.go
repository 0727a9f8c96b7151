package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"insurance_portal_backend/internal/aggregator/client"
	"insurance_portal_backend/internal/bootstrap"
	"insurance_portal_backend/internal/catalog"
	"insurance_portal_backend/internal/offers/repository"
	"insurance_portal_backend/internal/scheduler"
	"insurance_portal_backend/platform/config"
	"insurance_portal_backend/platform/logger"
	"insurance_portal_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.Database(ctx, log, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	rdb, err := bootstrap.Redis(ctx, log, cfg)
	if err != nil || rdb == nil {
		log.Error("scheduler requires redis", "error", err)
		panic("scheduler requires REDIS_URL")
	}
	defer func() { _ = rdb.Close() }()

	// Worker-side catalog wiring (no HTTP handlers required). The refresh
	// writes the shared Redis tier read by every API instance.
	catalogModule := catalog.NewModule(client.New(cfg, log), rdb, validator.New(), cfg, log)

	worker, err := scheduler.NewWorker(cfg, catalogModule.Service(), repository.New(pool), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		periodic.Run(ctx)
	}()

	worker.Run(ctx)
	wg.Wait()
}
