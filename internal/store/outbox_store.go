package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mercadolab/workflow-engine/internal/model"
)

// OutboxEntry is one undispatched (or recently dispatched) row of
// task_dispatch_outbox — see DESIGN.md Open Question O-1.
type OutboxEntry struct {
	TaskUID  int32
	EventUID int32
	Path     string
	OnFailure *string
}

// OutboxStore drains task_dispatch_outbox and marks rows dispatched
// once their LightTask reaches the queue.
type OutboxStore interface {
	ListUndispatched(ctx context.Context) ([]OutboxEntry, error)
	MarkDispatched(ctx context.Context, taskUID int32) error
}

type PostgresOutboxStore struct {
	db *DB
}

func NewPostgresOutboxStore(db *DB) *PostgresOutboxStore {
	return &PostgresOutboxStore{db: db}
}

func (s *PostgresOutboxStore) ListUndispatched(ctx context.Context) ([]OutboxEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT task_uid, event_uid, path, on_failure
		FROM task_dispatch_outbox
		WHERE dispatched_at IS NULL
		ORDER BY task_uid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list undispatched outbox entries: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		var onFailure sql.NullString
		if err := rows.Scan(&e.TaskUID, &e.EventUID, &e.Path, &onFailure); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		if onFailure.Valid {
			e.OnFailure = &onFailure.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresOutboxStore) MarkDispatched(ctx context.Context, taskUID int32) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE task_dispatch_outbox SET dispatched_at = NOW() WHERE task_uid = $1
	`, taskUID)
	if err != nil {
		return fmt.Errorf("mark outbox entry %d dispatched: %w", taskUID, err)
	}
	return nil
}

// SucceedEventAndOutbox commits the Event-success handoff atomically:
// in one transaction, it conditionally flips the event from
// non-Succeeded to Succeeded (a compare-and-swap guarding re-entrancy
// across concurrent engines) and inserts one task_dispatch_outbox row
// per still-Pending child task. If the CAS finds the event already
// Succeeded (a racing engine got there first), it returns
// (false, nil, nil) and does nothing else.
func SucceedEventAndOutbox(ctx context.Context, db *DB, eventUID int32, stdout, stderr string) (succeeded bool, enqueued []OutboxEntry, err error) {
	txErr := db.Transaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE events SET status = $2, stdout = $3, stderr = $4
			WHERE uid = $1 AND status <> $2
		`, eventUID, model.EventSucceeded, stdout, stderr)
		if err != nil {
			return fmt.Errorf("cas event %d to succeeded: %w", eventUID, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("read cas result for event %d: %w", eventUID, err)
		}
		if affected == 0 {
			succeeded = false
			return nil
		}
		succeeded = true

		rows, err := tx.QueryContext(ctx, `
			SELECT uid, path, on_failure FROM tasks WHERE event_uid = $1 AND status = $2
		`, eventUID, model.TaskPending)
		if err != nil {
			return fmt.Errorf("load pending tasks for event %d: %w", eventUID, err)
		}
		defer rows.Close()

		var pending []OutboxEntry
		for rows.Next() {
			var e OutboxEntry
			var onFailure sql.NullString
			if err := rows.Scan(&e.TaskUID, &e.Path, &onFailure); err != nil {
				return fmt.Errorf("scan pending task for event %d: %w", eventUID, err)
			}
			if onFailure.Valid {
				e.OnFailure = &onFailure.String
			}
			e.EventUID = eventUID
			pending = append(pending, e)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, e := range pending {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO task_dispatch_outbox (task_uid, event_uid, path, on_failure)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (task_uid) DO NOTHING
			`, e.TaskUID, e.EventUID, e.Path, e.OnFailure)
			if err != nil {
				return fmt.Errorf("outbox task %d for event %d: %w", e.TaskUID, eventUID, err)
			}
		}

		enqueued = pending
		return nil
	})
	if txErr != nil {
		return false, nil, txErr
	}
	return succeeded, enqueued, nil
}
