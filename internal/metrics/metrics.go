// Package metrics exposes Prometheus counters/gauges for the engine's
// three processes, scraped via internal/adminserver's /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Event metrics
	EventsTriggered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workfloweng_events_triggered_total",
			Help: "Total number of trigger script executions, by outcome",
		},
		[]string{"outcome"}, // succeeded, retrying
	)

	EventTriggerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "workfloweng_event_trigger_duration_seconds",
			Help:    "Trigger script execution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		},
	)

	// Task metrics
	TasksDispatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workfloweng_tasks_dispatched_total",
			Help: "Total number of tasks pushed onto the queue",
		},
	)

	TasksCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workfloweng_tasks_completed_total",
			Help: "Total number of task executions, by outcome",
		},
		[]string{"outcome"}, // completed, failed
	)

	TaskDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "workfloweng_task_duration_seconds",
			Help:    "Task script execution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		},
	)

	// Queue metrics
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "workfloweng_queue_depth",
			Help: "Current number of LightTask envelopes waiting in the queue",
		},
	)

	OutboxBacklog = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "workfloweng_outbox_backlog",
			Help: "Current number of undispatched task_dispatch_outbox rows",
		},
	)

	// Worker pool metrics
	ActiveWorkers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "workfloweng_active_workers",
			Help: "Current number of busy task-process worker slots, by engine",
		},
		[]string{"engine_uid"},
	)

	// WebSocket metrics (admin dashboard)
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "workfloweng_websocket_connections",
			Help: "Current number of connected admin dashboard clients",
		},
	)

	WebSocketMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workfloweng_websocket_messages_total",
			Help: "Total number of state-transition messages broadcast to dashboards",
		},
		[]string{"entity"}, // event, task, engine
	)
)

// RecordEventTrigger records one trigger script execution.
func RecordEventTrigger(outcome string, duration float64) {
	EventsTriggered.WithLabelValues(outcome).Inc()
	EventTriggerDuration.Observe(duration)
}

// RecordTaskDispatch records one task pushed onto the queue.
func RecordTaskDispatch() {
	TasksDispatched.Inc()
}

// RecordTaskCompletion records one task script execution.
func RecordTaskCompletion(outcome string, duration float64) {
	TasksCompleted.WithLabelValues(outcome).Inc()
	TaskDuration.Observe(duration)
}

// UpdateQueueDepth sets the queue depth gauge.
func UpdateQueueDepth(depth float64) {
	QueueDepth.Set(depth)
}

// UpdateOutboxBacklog sets the outbox backlog gauge.
func UpdateOutboxBacklog(depth float64) {
	OutboxBacklog.Set(depth)
}

// SetActiveWorkers sets the active-worker gauge for one engine.
func SetActiveWorkers(engineUID string, count float64) {
	ActiveWorkers.WithLabelValues(engineUID).Set(count)
}

// SetWebSocketConnections sets the connected-dashboard-client gauge.
func SetWebSocketConnections(count float64) {
	WebSocketConnections.Set(count)
}

// RecordWebSocketMessage records one broadcast message.
func RecordWebSocketMessage(entity string) {
	WebSocketMessages.WithLabelValues(entity).Inc()
}
