package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playground/bountyhub/internal/application/hunters"
)

const DefaultKey = "bountyhub:screening"

// Redis is a durable queue on a Redis list: LPUSH to enqueue, BRPOP to dequeue.
type Redis struct {
	rdb  *redis.Client
	key  string
	poll time.Duration
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func NewRedis(rdb *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{rdb: rdb, key: key, poll: 5 * time.Second}
}

func (q *Redis) Enqueue(ctx context.Context, job hunters.Job) error {
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.key, b).Err(); err != nil {
		return fmt.Errorf("redis lpush: %w", err)
	}
	return nil
}

// Dequeue polls BRPOP in short windows so ctx cancellation is noticed.
func (q *Redis) Dequeue(ctx context.Context) (hunters.Job, error) {
	for {
		res, err := q.rdb.BRPop(ctx, q.poll, q.key).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return hunters.Job{}, ctx.Err()
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return hunters.Job{}, ctx.Err()
			}
			if errors.Is(err, redis.ErrClosed) {
				return hunters.Job{}, hunters.ErrQueueClosed
			}
			return hunters.Job{}, fmt.Errorf("redis brpop: %w", err)
		}
		// res = [key, value]
		var job hunters.Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return hunters.Job{}, fmt.Errorf("decode job: %w", err)
		}
		return job, nil
	}
}

// Check pings Redis for the health endpoint.
func (q *Redis) Check(ctx context.Context) error {
	return q.rdb.Ping(ctx).Err()
}

func (q *Redis) Close() error { return q.rdb.Close() }
