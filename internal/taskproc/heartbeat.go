package taskproc

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mercadolab/workflow-engine/internal/logger"
)

const (
	poolKeyPrefix = "taskpool:"
	poolSetKey    = "taskpools:active"
)

// PoolInfo is the liveness snapshot one Task process publishes to
// Redis: one registry entry per engine's worker pool rather than per
// individual worker goroutine (DESIGN.md Open Question O-2).
type PoolInfo struct {
	EngineUID     int32     `json:"engine_uid"`
	Concurrency   int       `json:"concurrency"`
	ActiveTasks   int       `json:"active_tasks"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// Heartbeat periodically publishes a Pool's PoolInfo to a Redis
// registry that ActivePools reads back, covering every engine's pool,
// not just the one this process belongs to. internal/adminserver does
// not read this registry; its /metrics active-workers gauge is set by
// the Pool itself.
type Heartbeat struct {
	client   *redis.Client
	pool     *Pool
	engineID int32
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
	done     chan struct{}
}

// NewHeartbeat constructs a Heartbeat for pool, reporting under
// engineUID's key.
func NewHeartbeat(client *redis.Client, pool *Pool, engineUID int32, interval, timeout time.Duration) *Heartbeat {
	return &Heartbeat{
		client:   client,
		pool:     pool,
		engineID: engineUID,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the periodic publish loop.
func (h *Heartbeat) Start(ctx context.Context) {
	go h.loop(ctx)
}

// Stop halts the publish loop and removes this pool's registry entry.
func (h *Heartbeat) Stop() {
	close(h.stopCh)
	<-h.done

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.client.SRem(ctx, poolSetKey, h.key())
	h.client.Del(ctx, h.key())
}

func (h *Heartbeat) loop(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.publish(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.publish(ctx)
		}
	}
}

func (h *Heartbeat) publish(ctx context.Context) {
	info := PoolInfo{
		EngineUID:     h.engineID,
		Concurrency:   h.pool.concurrency,
		ActiveTasks:   h.pool.ActiveTasks(),
		LastHeartbeat: time.Now().UTC(),
	}

	key := h.key()
	if err := h.client.HSet(ctx, key, map[string]interface{}{
		"engine_uid":   info.EngineUID,
		"concurrency":  info.Concurrency,
		"active_tasks": info.ActiveTasks,
	}).Err(); err != nil {
		logger.Error().Err(err).Int32("engine_uid", h.engineID).Msg("failed to publish task pool heartbeat")
		return
	}
	h.client.Expire(ctx, key, h.timeout)
	h.client.SAdd(ctx, poolSetKey, key)
}

func (h *Heartbeat) key() string {
	return fmt.Sprintf("%s%d", poolKeyPrefix, h.engineID)
}

// ActivePools reads every currently-registered pool's liveness
// snapshot from the Redis registry.
func ActivePools(ctx context.Context, client *redis.Client) ([]PoolInfo, error) {
	keys, err := client.SMembers(ctx, poolSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list active task pools: %w", err)
	}

	var pools []PoolInfo
	for _, key := range keys {
		vals, err := client.HGetAll(ctx, key).Result()
		if err == redis.Nil || len(vals) == 0 {
			client.SRem(ctx, poolSetKey, key)
			continue
		}
		if err != nil {
			continue
		}

		var info PoolInfo
		fmt.Sscanf(vals["engine_uid"], "%d", &info.EngineUID)
		fmt.Sscanf(vals["concurrency"], "%d", &info.Concurrency)
		fmt.Sscanf(vals["active_tasks"], "%d", &info.ActiveTasks)
		pools = append(pools, info)
	}
	return pools, nil
}
