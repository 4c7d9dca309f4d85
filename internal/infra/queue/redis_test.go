package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playground/bountyhub/internal/application/hunters"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	q := NewRedis(rdb, "")
	q.poll = 50 * time.Millisecond
	t.Cleanup(func() { _ = q.Close() })
	return q, mr
}

func TestRedis_RoundTripFIFO(t *testing.T) {
	q, mr := newTestRedis(t)
	ctx := context.Background()
	at := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	require.NoError(t, q.Enqueue(ctx, hunters.Job{UserID: "a", Attempt: 1, EnqueuedAt: at}))
	require.NoError(t, q.Enqueue(ctx, hunters.Job{UserID: "b", Attempt: 2, EnqueuedAt: at}))

	list, err := mr.List(DefaultKey)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	j, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, hunters.Job{UserID: "a", Attempt: 1, EnqueuedAt: at}, j)

	j, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", j.UserID)
	assert.Equal(t, 2, j.Attempt)
}

func TestRedis_DequeueWaitsForPush(t *testing.T) {
	q, _ := newTestRedis(t)
	ctx := context.Background()

	got := make(chan hunters.Job, 1)
	go func() {
		j, err := q.Dequeue(ctx)
		if err == nil {
			got <- j
		}
		close(got)
	}()

	time.Sleep(120 * time.Millisecond)
	require.NoError(t, q.Enqueue(ctx, hunters.Job{UserID: "late", Attempt: 1}))

	select {
	case j := <-got:
		assert.Equal(t, "late", j.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("Dequeue never returned the pushed job")
	}
}

func TestRedis_DequeueHonoursCancel(t *testing.T) {
	q, _ := newTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(ctx)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Dequeue ignored cancellation")
	}
}

func TestRedis_Check(t *testing.T) {
	q, mr := newTestRedis(t)
	require.NoError(t, q.Check(context.Background()))

	mr.Close()
	assert.Error(t, q.Check(context.Background()))
}

func TestRedis_MalformedPayload(t *testing.T) {
	q, mr := newTestRedis(t)
	_, err := mr.Lpush(DefaultKey, "not json")
	require.NoError(t, err)

	_, err = q.Dequeue(context.Background())
	assert.ErrorContains(t, err, "decode job")
}
