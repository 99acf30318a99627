package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/logging"
	"github.com/go-co-op/gocron/v2"
)

// DefaultInterval is the background sync period.
const DefaultInterval = 30 * time.Second

// Syncer is what the scheduler triggers.
type Syncer interface {
	Sync(ctx context.Context) (Result, error)
}

// Scheduler runs Sync on a fixed interval. The engine's own lock makes a
// tick that overlaps a manual sync a no-op, and the engine's reachability
// check makes an offline tick free.
type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	log      logging.Logger

	mu    sync.Mutex
	sched gocron.Scheduler
}

func NewScheduler(s Syncer, interval time.Duration, log logging.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{syncer: s, interval: interval, log: log}
}

// Start schedules the job. ctx is handed to every tick; cancelling it makes
// running ticks stop early but does not remove the job, call Stop for that.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched != nil {
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.tick, ctx),
		gocron.WithName("sync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("failed to schedule sync: %w", err)
	}

	sched.Start()
	s.sched = sched
	s.log.Info(ctx, "background sync started", "interval", s.interval.String())
	return nil
}

// Stop removes the job and waits for a running tick to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	return err
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res, err := s.syncer.Sync(ctx)
	if err != nil {
		s.log.Warn(ctx, "background sync failed", "error", err)
		return
	}
	s.log.Debug(ctx, "background sync tick", "outcome", res.Outcome.String(), "trips", res.Trips, "fuel", res.Fuel)
}
