// Package queue is the transient hand-off between the Event process
// and the Task process: a single Redis FIFO list carrying serialized
// LightTask envelopes. The queue is shared by all Engines; any Task
// process may consume any message.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mercadolab/workflow-engine/internal/config"
	"github.com/mercadolab/workflow-engine/internal/model"
)

// Queue is a single Redis list keyed by a fixed name (default
// "tasks"), simpler than a priority-stream design because this system
// has no task priority.
type Queue struct {
	client *redis.Client
	key    string
}

// New connects to Redis and verifies connectivity with a startup Ping
// before returning.
func New(cfg config.RedisConfig, queueName string) (*Queue, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.MaxRetries = cfg.MaxRetries
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Queue{client: client, key: queueName}, nil
}

// Push appends a LightTask to the tail of the queue.
func (q *Queue) Push(ctx context.Context, t model.LightTask) error {
	if err := q.client.LPush(ctx, q.key, EncodeLightTask(t)).Err(); err != nil {
		return fmt.Errorf("push task %d to queue: %w", t.UID, err)
	}
	return nil
}

// Pop removes and decodes one LightTask from the head of the queue,
// non-blocking: (model.LightTask{}, false, nil) when the queue is
// empty, which is not an error.
func (q *Queue) Pop(ctx context.Context) (model.LightTask, bool, error) {
	data, err := q.client.RPop(ctx, q.key).Bytes()
	if err == redis.Nil {
		return model.LightTask{}, false, nil
	}
	if err != nil {
		return model.LightTask{}, false, fmt.Errorf("pop from queue: %w", err)
	}

	t, err := DecodeLightTask(data)
	if err != nil {
		return model.LightTask{}, false, err
	}
	return t, true, nil
}

// Depth reports the current queue length, for /metrics.
func (q *Queue) Depth(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("read queue depth: %w", err)
	}
	return n, nil
}

// Client exposes the underlying Redis client for components (e.g.
// internal/events) that need pub/sub on the same connection.
func (q *Queue) Client() *redis.Client {
	return q.client
}

// Close closes the Redis connection.
func (q *Queue) Close() error {
	return q.client.Close()
}
