// Package scheduler runs the overdue plan sweeper on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"alcyxob/fitness-coach/internal/service"

	"github.com/robfig/cron"
)

// Sweeper is the job the scheduler drives.
type Sweeper interface {
	Run(ctx context.Context) service.SweepReport
}

type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	log     *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup

	mu      sync.Mutex // guards stopped and every wg.Add
	stopped bool
}

// New registers the sweeper under a six-field cron spec (seconds first),
// evaluated in UTC.
func New(schedule string, sweeper Sweeper, log *slog.Logger) (*Scheduler, error) {
	if _, err := cron.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid sweeper schedule %q: %w", schedule, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    cron.NewWithLocation(time.UTC),
		sweeper: sweeper,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	if err := s.cron.AddFunc(schedule, s.tick); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

// tick runs one sweep unless the previous one is still going or the
// scheduler was stopped.
func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if !s.running.CompareAndSwap(false, true) {
		s.mu.Unlock()
		s.log.Warn("previous sweep still running, skipping tick")
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer func() {
		s.running.Store(false)
		s.wg.Done()
	}()

	start := time.Now()
	report := s.sweeper.Run(s.ctx)
	s.log.Info("scheduled sweep done",
		"duration", time.Since(start),
		"processed", report.Processed,
		"failed", report.Failed,
	)
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("sweeper scheduled", "next_run", s.cron.Entries()[0].Next)
}

// Stop prevents further ticks, cancels a sweep in progress and waits for it.
func (s *Scheduler) Stop() {
	// No tick can register with wg once stopped is set
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.cron.Stop()
	s.cancel()
	s.wg.Wait()
}
