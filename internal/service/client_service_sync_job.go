package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

type syncJob struct {
	syncService SyncService
	online      Connectivity
	interval    time.Duration
	trigger     chan struct{}

	logger *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a job that drains the queue whenever Trigger is called
// and every interval while online is up. A zero or negative interval falls
// back to config.DefaultSyncInterval. The job is idle until Start or Run.
func NewSyncJob(syncService SyncService, online Connectivity, interval time.Duration, log *logger.Logger) SyncJob {
	if interval <= 0 {
		interval = config.DefaultSyncInterval
	}
	return &syncJob{
		syncService: syncService,
		online:      online,
		interval:    interval,
		trigger:     make(chan struct{}, 1),
		logger:      log.WithComponent("sync-job"),
	}
}

// Start implements SyncJob.
func (j *syncJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		_ = j.Run(jobCtx)
	}()
}

// Run implements SyncJob. It returns nil once ctx is cancelled.
func (j *syncJob) Run(ctx context.Context) error {
	t := time.NewTicker(j.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-j.trigger:
			j.drain(ctx, "triggered")
		case <-t.C:
			if j.online == nil || j.online.IsOnline() {
				j.drain(ctx, "interval")
			}
		}
	}
}

// Trigger implements SyncJob.
func (j *syncJob) Trigger() {
	select {
	case j.trigger <- struct{}{}:
	default:
	}
}

// Stop implements SyncJob. Safe to call when the job is not running.
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

func (j *syncJob) drain(ctx context.Context, reason string) {
	log := j.logger.With().Str("func", "syncJob.drain").Str("reason", reason).Logger()

	summary, err := j.syncService.Drain(ctx)
	switch {
	case errors.Is(err, ErrDrainInProgress):
		log.Debug().Msg("drain already running, trigger collapsed")
	case errors.Is(err, context.Canceled):
	case err != nil:
		log.Err(err).Msg("drain failed")
	default:
		log.Debug().Int("replayed", summary.Replayed).Int("remaining", summary.Remaining).Msg("drain finished")
	}
}
