package hunters

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/playground/bountyhub/internal/domain/hunter"
)

// RetryConfig controls re-screening after a failed attempt. The delay before
// attempt n+1 is BaseDelay * 2^(n-1).
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Delay returns the wait after a failed attempt.
func (r RetryConfig) Delay(attempt int) time.Duration {
	d := r.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

// Pool runs screening jobs from a Queue on a fixed number of workers.
type Pool struct {
	svc     *Service
	queue   Queue
	workers int
	retry   RetryConfig
	log     *zap.Logger

	// retries yang masih nunggu backoff
	mu      sync.Mutex
	timers  map[*time.Timer]struct{}
	stopped bool
	pending sync.WaitGroup
}

func NewPool(svc *Service, queue Queue, workers int, retry RetryConfig, log *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		svc:     svc,
		queue:   queue,
		workers: workers,
		retry:   retry,
		log:     log,
		timers:  map[*time.Timer]struct{}{},
	}
}

// Run blocks until ctx is done or the queue is closed. It returns nil on a
// normal shutdown.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		id := i
		g.Go(func() error { return p.loop(ctx, id) })
	}
	p.log.Info("screening workers started", zap.Int("workers", p.workers))
	err := g.Wait()
	p.stopRetries()
	p.log.Info("screening workers stopped")
	return err
}

func (p *Pool) loop(ctx context.Context, id int) error {
	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrQueueClosed) {
				return nil
			}
			p.log.Error("dequeue screening job", zap.Int("worker", id), zap.Error(err))
			if !sleep(ctx, time.Second) {
				return nil
			}
			continue
		}
		p.Handle(ctx, job)
	}
}

// Handle runs one job. A missing profile is terminal. Other failures are
// re-queued after the backoff until MaxAttempts is reached; the worker does
// not wait for it.
func (p *Pool) Handle(ctx context.Context, job Job) {
	if job.Attempt <= 0 {
		job.Attempt = 1
	}
	res, err := p.svc.Screen(ctx, job.UserID)
	if err == nil {
		p.log.Info("hunter screened",
			zap.String("user_id", job.UserID),
			zap.Int("attempt", job.Attempt),
			zap.Int("score", res.Score),
		)
		return
	}

	terminal := errors.Is(err, hunter.ErrProfileNotFound) || job.Attempt >= p.retry.MaxAttempts
	p.svc.RecordFailure(context.WithoutCancel(ctx), job, PhaseWorker, err, terminal)
	if terminal {
		return
	}

	p.retryLater(Job{UserID: job.UserID, Attempt: job.Attempt + 1}, p.retry.Delay(job.Attempt))
}

// retryLater enqueues job once delay has passed. Retries still waiting when
// the pool stops are dropped; the sweep picks those profiles up again.
func (p *Pool) retryLater(job Job, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.pending.Add(1)
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		defer p.pending.Done()
		p.mu.Lock()
		delete(p.timers, t)
		stopped := p.stopped
		p.mu.Unlock()
		if stopped {
			return
		}

		job.EnqueuedAt = p.svc.Clock.Now()
		if err := p.queue.Enqueue(context.Background(), job); err != nil {
			p.svc.RecordFailure(context.Background(), job, PhaseWorker, err, true)
		}
	})
	p.timers[t] = struct{}{}
}

// stopRetries cancels waiting retries and waits for the ones already firing.
func (p *Pool) stopRetries() {
	p.mu.Lock()
	p.stopped = true
	dropped := 0
	for t := range p.timers {
		if t.Stop() {
			p.pending.Done()
			dropped++
		}
		delete(p.timers, t)
	}
	p.mu.Unlock()
	if dropped > 0 {
		p.log.Info("pending screening retries dropped", zap.Int("count", dropped))
	}
	p.pending.Wait()
}

// sleep waits d or until ctx is done; false means ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
