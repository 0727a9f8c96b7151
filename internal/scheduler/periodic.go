package scheduler

import (
	"context"
	"fmt"

	"insurance_portal_backend/platform/config"
	"insurance_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues the recurring maintenance tasks on their cron schedules.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				log.Warn("periodic task enqueue failed", "error", err)
				return
			}
			log.Debug("periodic task enqueued", "task", info.Type, "id", info.ID)
		},
	})
	queue := queueName(cfg)

	if cronspec := cfg.GetCatalogRefreshCron(); cronspec != "" {
		task, err := NewCatalogRefreshTask(CatalogRefreshPayload{Reason: "schedule"})
		if err != nil {
			return nil, err
		}
		if _, err := scheduler.Register(cronspec, task, asynq.Queue(queue)); err != nil {
			return nil, fmt.Errorf("register catalog refresh: %w", err)
		}
	}

	if cronspec := cfg.GetSnapshotPurgeCron(); cronspec != "" {
		task, err := NewSnapshotPurgeTask(SnapshotPurgePayload{})
		if err != nil {
			return nil, err
		}
		if _, err := scheduler.Register(cronspec, task, asynq.Queue(queue)); err != nil {
			return nil, fmt.Errorf("register snapshot purge: %w", err)
		}
	}

	return &Periodic{scheduler: scheduler, log: log}, nil
}

// Run blocks until ctx is done.
func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}
	if err := p.scheduler.Start(); err != nil {
		p.log.Error("periodic scheduler failed to start", "error", err)
		return
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
}
