// internal/infrastructure/scheduler/scheduler.go
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"farewatch-service/pkg/logger"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler fires a job on a fixed interval. Cycles never overlap:
// a tick that arrives while the previous cycle is still running is
// skipped and the job runs again at the next tick. The job's error
// is logged and never stops the schedule.
type Scheduler struct {
	interval time.Duration
	loc      *time.Location
	job      Job
	logger   logger.Logger
	running  atomic.Bool
}

// New creates a scheduler. The location only affects how tick times
// are reported; the job owns any date arithmetic of its own.
func New(interval time.Duration, loc *time.Location, job Job, logger logger.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		loc:      loc,
		job:      job,
		logger:   logger,
	}
}

// Start blocks, firing the job every interval until ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Scheduler started",
		"interval", s.interval.String(),
		"timezone", s.loc.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs a single cycle unless one is already in flight, in
// which case the tick is dropped. It returns whether the job ran.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("Previous cycle still running, skipping tick")
		return false
	}
	defer s.running.Store(false)

	s.logger.Info("Cycle started", "at", time.Now().In(s.loc).Format(time.RFC3339))

	if err := s.job(ctx); err != nil {
		s.logger.Error("Cycle failed", "error", err)
	}
	return true
}
