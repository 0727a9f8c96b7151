package scheduler

import (
	"context"
	"fmt"
	"time"

	"insurance_portal_backend/platform/config"
	"insurance_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Catalog reloads the insurer product catalog.
type Catalog interface {
	Refresh(ctx context.Context) error
}

// SnapshotPurger deletes offer snapshots older than a cutoff.
type SnapshotPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	catalog   Catalog
	snapshots SnapshotPurger
	retention time.Duration
	now       func() time.Time
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, catalog Catalog, snapshots SnapshotPurger, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(catalog, snapshots, cfg.GetSnapshotRetention(), log)
	w.server = server
	return w, nil
}

func newWorker(catalog Catalog, snapshots SnapshotPurger, retention time.Duration, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:       mux,
		catalog:   catalog,
		snapshots: snapshots,
		retention: retention,
		now:       time.Now,
		log:       log,
	}

	mux.HandleFunc(TaskCatalogRefresh, w.handleCatalogRefresh)
	mux.HandleFunc(TaskSnapshotPurge, w.handleSnapshotPurge)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleCatalogRefresh(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCatalogRefreshPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if w.catalog == nil {
		return nil
	}

	started := w.now()
	if err := w.catalog.Refresh(ctx); err != nil {
		w.log.Warn("catalog refresh failed", "reason", payload.Reason, "error", err)
		return err
	}
	w.log.Info("catalog refreshed", "reason", payload.Reason, "duration_ms", w.now().Sub(started).Milliseconds())
	return nil
}

func (w *Worker) handleSnapshotPurge(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSnapshotPurgePayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if w.snapshots == nil {
		return nil
	}

	retention := w.retention
	if payload.RetentionHours > 0 {
		retention = time.Duration(payload.RetentionHours) * time.Hour
	}
	if retention <= 0 {
		return nil
	}

	deleted, err := w.snapshots.PurgeBefore(ctx, w.now().Add(-retention))
	if err != nil {
		w.log.DatabaseError("purge snapshots", err)
		return err
	}
	if deleted > 0 {
		w.log.Info("offer snapshots purged", "deleted", deleted, "retention", retention.String())
	}
	return nil
}
