// Package queue holds the screening queue backends.
package queue

import (
	"context"
	"sync"

	"github.com/playground/bountyhub/internal/application/hunters"
)

// Memory is an in-process buffered queue. Jobs are lost on restart; the
// rescreen sweep picks those profiles up again.
type Memory struct {
	ch     chan hunters.Job
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 256
	}
	return &Memory{ch: make(chan hunters.Job, size), done: make(chan struct{})}
}

// Enqueue never blocks; a full buffer returns hunters.ErrQueueFull.
func (m *Memory) Enqueue(_ context.Context, job hunters.Job) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return hunters.ErrQueueClosed
	}
	select {
	case m.ch <- job:
		return nil
	default:
		return hunters.ErrQueueFull
	}
}

func (m *Memory) Dequeue(ctx context.Context) (hunters.Job, error) {
	select {
	case <-ctx.Done():
		return hunters.Job{}, ctx.Err()
	case job := <-m.ch:
		return job, nil
	case <-m.done:
		// drain what is left before reporting closed
		select {
		case job := <-m.ch:
			return job, nil
		default:
			return hunters.Job{}, hunters.ErrQueueClosed
		}
	}
}

// Len returns the number of buffered jobs.
func (m *Memory) Len() int { return len(m.ch) }

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}
