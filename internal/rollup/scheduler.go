package rollup

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Cron expressions for the two schedules, evaluated in the configured
// fixed time zone so period boundaries are stable across clock skew.
const (
	dailySpec   = "5 0 * * *"  // 00:05, aggregates the previous day
	monthlySpec = "30 0 1 * *" // 00:30 on the 1st, aggregates the previous month
)

// Scheduler drives the rollup on its two independent schedules. A run
// that is still in flight when its next tick fires is skipped, never
// stacked.
type Scheduler struct {
	rollup *Rollup
	cron   *cron.Cron
	loc    *time.Location
	log    *zap.Logger

	dailyMu   sync.Mutex
	monthlyMu sync.Mutex
}

func NewScheduler(r *Rollup, loc *time.Location, log *zap.Logger) *Scheduler {
	return &Scheduler{
		rollup: r,
		cron:   cron.New(cron.WithLocation(loc)),
		loc:    loc,
		log:    log,
	}
}

// Start registers both jobs and starts the cron loop. Stop the returned
// scheduler with Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(dailySpec, func() { s.runDaily(ctx) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(monthlySpec, func() { s.runMonthly(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("rollup scheduler started",
		zap.String("daily", dailySpec), zap.String("monthly", monthlySpec),
		zap.String("tz", s.loc.String()))
	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("rollup scheduler stopped")
}

func (s *Scheduler) runDaily(ctx context.Context) {
	if !s.dailyMu.TryLock() {
		s.log.Warn("daily rollup still running, skipping tick")
		return
	}
	defer s.dailyMu.Unlock()

	yesterday := time.Now().In(s.loc).AddDate(0, 0, -1)
	if _, err := s.rollup.RunDaily(ctx, yesterday); err != nil {
		s.log.Error("daily rollup failed", zap.Error(err))
	}
}

func (s *Scheduler) runMonthly(ctx context.Context) {
	if !s.monthlyMu.TryLock() {
		s.log.Warn("monthly rollup still running, skipping tick")
		return
	}
	defer s.monthlyMu.Unlock()

	lastMonth := time.Now().In(s.loc).AddDate(0, -1, 0)
	if _, err := s.rollup.RunMonthly(ctx, lastMonth); err != nil {
		s.log.Error("monthly rollup failed", zap.Error(err))
	}
}
