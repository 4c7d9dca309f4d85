// Package scheduler wires up the cron job that re-queues hunter profiles
// whose screening never landed.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper is the screening sweep use case.
type Sweeper interface {
	Sweep(ctx context.Context, grace time.Duration, batch int) (int, error)
}

// Scheduler wraps robfig/cron and manages the sweep loop.
type Scheduler struct {
	cron  *cron.Cron
	sweep Sweeper
	spec  string // cron spec, e.g. "@every 5m"
	grace time.Duration
	batch int
	log   *zap.Logger

	// initial tracks the sweep fired by Start
	initial sync.WaitGroup
}

func New(sweep Sweeper, spec string, grace time.Duration, batch int, log *zap.Logger) *Scheduler {
	if spec == "" {
		spec = "@every 5m"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		// overlapping sweeps would enqueue the same profiles twice
		cron:  cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweep: sweep,
		spec:  spec,
		grace: grace,
		batch: batch,
		log:   log,
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so profiles left over from a restart are not kept waiting.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.log.Info("sweep scheduler started", zap.String("spec", s.spec))

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.RunOnce(ctx)
	}()
	return nil
}

// Run starts the scheduler and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop waits for running sweeps to finish, the initial one included.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.initial.Wait()
	s.log.Info("sweep scheduler stopped")
}

// RunOnce performs a single sweep and logs the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := s.sweep.Sweep(ctx, s.grace, s.batch)
	if err != nil {
		s.log.Error("screening sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("screening sweep re-queued profiles", zap.Int("count", n))
	}
}
