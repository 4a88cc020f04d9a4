// Package taskproc implements the Task process: a fixed-size worker
// pool that pops LightTask envelopes off the queue, re-checks
// Task-row authority, and runs the task's script via internal/trigger.
package taskproc

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mercadolab/workflow-engine/internal/logger"
	"github.com/mercadolab/workflow-engine/internal/metrics"
	"github.com/mercadolab/workflow-engine/internal/model"
	"github.com/mercadolab/workflow-engine/internal/queue"
	"github.com/mercadolab/workflow-engine/internal/store"
	"github.com/mercadolab/workflow-engine/internal/trigger"
)

// Pool runs a fixed number of worker goroutines that drain the queue
// for one engine.
type Pool struct {
	engines         store.EngineStore
	tasks           store.TaskStore
	q               *queue.Queue
	concurrency     int
	idleInterval    time.Duration
	shutdownTimeout time.Duration
	heartbeat       *Heartbeat

	sem    chan struct{}
	wg     sync.WaitGroup
	active int32 // currently executing tasks, for /metrics
}

// New constructs a Pool wired to the given stores and queue.
func New(engines store.EngineStore, tasks store.TaskStore, q *queue.Queue, concurrency int, idleInterval, shutdownTimeout time.Duration) *Pool {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Pool{
		engines:         engines,
		tasks:           tasks,
		q:               q,
		concurrency:     concurrency,
		idleInterval:    idleInterval,
		shutdownTimeout: shutdownTimeout,
		sem:             make(chan struct{}, concurrency),
	}
}

// WithHeartbeat attaches a Redis-backed liveness publisher, started and
// stopped around Run. Optional: a Pool with no heartbeat attached still
// dispatches tasks correctly, it just won't appear in ActivePools.
func (p *Pool) WithHeartbeat(client *redis.Client, engineUID int32, interval, timeout time.Duration) *Pool {
	p.heartbeat = NewHeartbeat(client, p, engineUID, interval, timeout)
	return p
}

// ActiveTasks reports the number of tasks currently executing, for
// /metrics' active_workers gauge.
func (p *Pool) ActiveTasks() int {
	return int(atomic.LoadInt32(&p.active))
}

// Run dispatches tasks for engineUID until running is cleared (local
// Ctrl+C) or the Engine row's stop_signal is observed, mirroring the
// cooperating-cancellation shape of eventproc.Poller.Run. It sets
// task_process_status Running on entry and waits for in-flight workers
// (bounded by shutdownTimeout) before marking it Stopped.
func (p *Pool) Run(ctx context.Context, engineUID int32, running *atomic.Bool) error {
	log := logger.WithComponent("task-process").With().Int32("engine_uid", engineUID).Logger()
	engineLabel := strconv.FormatInt(int64(engineUID), 10)

	if err := p.engines.SetTaskProcessStatus(ctx, engineUID, model.ProcessRunning); err != nil {
		return err
	}
	log.Info().Int("concurrency", p.concurrency).Msg("task process started")

	if p.heartbeat != nil {
		p.heartbeat.Start(ctx)
		defer p.heartbeat.Stop()
	}

	for running.Load() {
		t, ok, err := p.q.Pop(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to pop task from queue")
		}

		if !ok {
			if stop, err := p.engines.StopSignal(ctx, engineUID); err != nil {
				log.Error().Err(err).Msg("failed to read stop signal")
			} else if stop {
				break
			}
			metrics.SetActiveWorkers(engineLabel, float64(p.ActiveTasks()))
			if depth, err := p.q.Depth(ctx); err == nil {
				metrics.UpdateQueueDepth(float64(depth))
			}
			time.Sleep(p.idleInterval)
			continue
		}

		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			running.Store(false)
			continue
		}

		p.wg.Add(1)
		go p.execute(ctx, log, t)
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(p.shutdownTimeout):
		log.Warn().Msg("task process shutdown timed out waiting for in-flight workers")
	}

	if err := p.engines.SetTaskProcessStatus(ctx, engineUID, model.ProcessStopped); err != nil {
		return err
	}
	log.Info().Msg("task process stopped")
	return nil
}

// execute re-checks the Task row's own status before running the
// script: a non-Pending task is a no-op, handling both a replayed
// outbox dispatch and a task whose state already moved on.
func (p *Pool) execute(ctx context.Context, log zerolog.Logger, lt model.LightTask) {
	defer p.wg.Done()
	defer func() { <-p.sem }()
	atomic.AddInt32(&p.active, 1)
	defer atomic.AddInt32(&p.active, -1)

	status, err := p.tasks.Status(ctx, lt.UID)
	if err != nil {
		log.Error().Err(err).Int32("task_uid", lt.UID).Msg("failed to read task status")
		return
	}
	if status != model.TaskPending {
		log.Info().Int32("task_uid", lt.UID).Str("status", string(status)).Msg("skipping non-pending task")
		return
	}

	if err := p.tasks.MarkRunning(ctx, lt.UID); err != nil {
		log.Error().Err(err).Int32("task_uid", lt.UID).Msg("failed to mark task running")
		return
	}

	start := time.Now()
	res, err := trigger.Run(ctx, lt.Path)
	if err != nil {
		// BadTaskPath or a recovered panic: leave the task Running so an
		// operator can see it's stuck rather than silently losing it.
		// Tasks never retry, so there is nothing to requeue here.
		log.Error().Err(err).Int32("task_uid", lt.UID).Str("path", lt.Path).Msg("task script execution failed to run")
		return
	}
	duration := time.Since(start).Seconds()

	if res.Succeeded {
		if err := p.tasks.MarkCompleted(ctx, lt.UID, res.Stdout, res.Stderr); err != nil {
			log.Error().Err(err).Int32("task_uid", lt.UID).Msg("failed to mark task completed")
		}
		metrics.RecordTaskCompletion("completed", duration)
		log.Info().Int32("task_uid", lt.UID).Msg("task completed")
		return
	}

	if err := p.tasks.MarkFailed(ctx, lt.UID, res.Stdout, res.Stderr); err != nil {
		log.Error().Err(err).Int32("task_uid", lt.UID).Msg("failed to mark task failed")
	}
	metrics.RecordTaskCompletion("failed", duration)
	log.Warn().Int32("task_uid", lt.UID).Int("exit_code", res.ExitCode).Msg("task failed")
}
