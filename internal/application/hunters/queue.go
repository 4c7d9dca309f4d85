package hunters

import (
	"context"
	"errors"
	"time"
)

// Job asks for one screening pass over a user's profile.
type Job struct {
	UserID     string    `json:"userId"`
	Attempt    int       `json:"attempt"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

var (
	ErrQueueClosed = errors.New("screening queue closed")
	ErrQueueFull   = errors.New("screening queue full")
)

// Queue carries screening jobs from the application flow to the workers.
// Dequeue blocks until a job arrives or ctx is done.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Dequeue(ctx context.Context) (Job, error)
}

// Observer receives screening outcomes, e.g. for metrics.
type Observer interface {
	Screened(score int)
	ScreeningFailed(terminal bool)
}

type nopObserver struct{}

func (nopObserver) Screened(int)         {}
func (nopObserver) ScreeningFailed(bool) {}
