// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// SchedulerConfig tunes the background jobs. A zero interval disables a job.
type SchedulerConfig struct {
	RegistrationTTL  time.Duration
	StaleCheckEvery  time.Duration
	ArchiveEvery     time.Duration
	ArchiveBatchSize int
	Archiver         ReplayArchiver
}

// StartScheduler runs the maintenance jobs on the engine's clock. The caller
// must Shutdown the returned scheduler.
func (e *Engine) StartScheduler(ctx context.Context, cfg SchedulerConfig) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithClock(e.clock))
	if err != nil {
		return nil, err
	}

	// Every few minutes: cancel tournaments that never started
	if cfg.RegistrationTTL > 0 && cfg.StaleCheckEvery > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(cfg.StaleCheckEvery),
			gocron.NewTask(func() {
				n, err := e.CancelStaleTournaments(ctx, cfg.RegistrationTTL)
				if err != nil {
					log.Printf("[Scheduler] stale tournament sweep failed: %v", err)
					return
				}
				if n > 0 {
					log.Printf("✅ [Scheduler] cancelled %d stale tournaments", n)
				}
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Archiver != nil && cfg.ArchiveEvery > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(cfg.ArchiveEvery),
			gocron.NewTask(func() {
				n, err := e.ArchiveReplays(ctx, cfg.Archiver, cfg.ArchiveBatchSize)
				if err != nil {
					log.Printf("[Scheduler] replay archive failed after %d uploads: %v", n, err)
					return
				}
				if n > 0 {
					log.Printf("✅ [Scheduler] archived %d replays", n)
				}
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, err
		}
	}

	sched.Start()
	return sched, nil
}
