// Package eventproc implements the Event process: it continuously
// polls non-succeeded Events, runs their trigger scripts, and on
// success transactionally enqueues the event's child tasks via the
// outbox pattern (DESIGN.md Open Question O-1).
package eventproc

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mercadolab/workflow-engine/internal/logger"
	"github.com/mercadolab/workflow-engine/internal/metrics"
	"github.com/mercadolab/workflow-engine/internal/model"
	"github.com/mercadolab/workflow-engine/internal/queue"
	"github.com/mercadolab/workflow-engine/internal/store"
	"github.com/mercadolab/workflow-engine/internal/trigger"
)

// Poller runs the Event process's poll loop for one engine.
type Poller struct {
	db           *store.DB
	engines      store.EngineStore
	events       store.EventStore
	outbox       store.OutboxStore
	q            *queue.Queue
	idleInterval time.Duration
}

// New constructs a Poller wired to the given stores and queue.
func New(db *store.DB, engines store.EngineStore, events store.EventStore, outbox store.OutboxStore, q *queue.Queue, idleInterval time.Duration) *Poller {
	return &Poller{db: db, engines: engines, events: events, outbox: outbox, q: q, idleInterval: idleInterval}
}

// Run executes the poll loop for engineUID until running is cleared
// (local Ctrl+C) or the Engine row's stop_signal is observed — the two
// cooperating cancellation paths a clean shutdown needs. It marks
// event_process_status Running on entry and Stopped on exit.
func (p *Poller) Run(ctx context.Context, engineUID int32, running *atomic.Bool) error {
	log := logger.WithComponent("event-process").With().Int32("engine_uid", engineUID).Logger()

	if err := p.engines.SetEventProcessStatus(ctx, engineUID, model.ProcessRunning); err != nil {
		return err
	}
	log.Info().Msg("event process started")

	for running.Load() {
		events, err := p.events.ListPending(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to list pending events")
		}

		for _, e := range events {
			if !running.Load() {
				break
			}
			p.tick(ctx, log, e)
		}

		// Sweep the outbox every tick, not only right after a commit,
		// so a crash between push and mark is recovered on the next
		// tick.
		p.relay(ctx, log)

		if depth, err := p.q.Depth(ctx); err == nil {
			metrics.UpdateQueueDepth(float64(depth))
		}

		if len(events) == 0 {
			time.Sleep(p.idleInterval)
		}

		if stop, err := p.engines.StopSignal(ctx, engineUID); err != nil {
			log.Error().Err(err).Msg("failed to read stop signal")
		} else if stop {
			break
		}
	}

	if err := p.engines.SetEventProcessStatus(ctx, engineUID, model.ProcessStopped); err != nil {
		return err
	}
	log.Info().Msg("event process stopped")
	return nil
}

// tick executes one event's trigger and applies the resulting status
// transition.
func (p *Poller) tick(ctx context.Context, log zerolog.Logger, e *model.Event) {
	start := time.Now()
	res, err := trigger.Run(ctx, e.Trigger)
	if err != nil {
		// BadTriggerPath or a panic recovered in trigger.Run: the event
		// is left in its prior state and retried next tick.
		log.Warn().Err(err).Int32("event_uid", e.UID).Str("trigger", e.Trigger).Msg("trigger execution failed, leaving event unchanged")
		return
	}
	duration := time.Since(start).Seconds()

	if res.Succeeded {
		succeeded, enqueued, err := store.SucceedEventAndOutbox(ctx, p.db, e.UID, res.Stdout, res.Stderr)
		if err != nil {
			log.Error().Err(err).Int32("event_uid", e.UID).Msg("failed to commit event success and outbox")
			return
		}
		if !succeeded {
			// A racing engine already succeeded this event first; the
			// compare-and-swap on the Event row is what makes this safe.
			return
		}
		metrics.RecordEventTrigger("succeeded", duration)
		log.Info().Int32("event_uid", e.UID).Int("task_count", len(enqueued)).Msg("event succeeded, tasks outboxed")
		p.relayEntries(ctx, log, enqueued)
		return
	}

	metrics.RecordEventTrigger("retrying", duration)
	if err := p.events.RecordAttempt(ctx, e.UID, res.Stdout, res.Stderr); err != nil {
		log.Error().Err(err).Int32("event_uid", e.UID).Msg("failed to record trigger output")
	}
	if err := p.events.MarkRetrying(ctx, e.UID); err != nil {
		log.Error().Err(err).Int32("event_uid", e.UID).Msg("failed to mark event retrying")
	}
}

// relay drains every undispatched outbox row and pushes it to the
// queue, marking it dispatched. Re-pushing an already-delivered row is
// harmless: the Task process treats a non-Pending Task as a no-op, so
// replaying this after a crash is safe.
func (p *Poller) relay(ctx context.Context, log zerolog.Logger) {
	entries, err := p.outbox.ListUndispatched(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list undispatched outbox entries")
		return
	}
	metrics.UpdateOutboxBacklog(float64(len(entries)))
	p.relayEntries(ctx, log, entries...)
}

func (p *Poller) relayEntries(ctx context.Context, log zerolog.Logger, entries ...store.OutboxEntry) {
	for _, entry := range entries {
		lt := model.LightTask{UID: entry.TaskUID, Path: entry.Path, OnFailure: entry.OnFailure}
		if err := p.q.Push(ctx, lt); err != nil {
			log.Error().Err(err).Int32("task_uid", entry.TaskUID).Msg("failed to push task to queue")
			continue
		}
		if err := p.outbox.MarkDispatched(ctx, entry.TaskUID); err != nil {
			log.Error().Err(err).Int32("task_uid", entry.TaskUID).Msg("failed to mark outbox entry dispatched")
		}
		metrics.RecordTaskDispatch()
	}
}
