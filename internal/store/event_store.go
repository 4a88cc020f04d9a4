package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mercadolab/workflow-engine/internal/model"
)

// EventStore persists Event rows. Events are owned by the Event
// process for status transitions; submission owns insertion.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) (int32, error)
	Get(ctx context.Context, uid int32) (*model.Event, error)
	List(ctx context.Context) ([]*model.Event, error)
	// ListPending returns every Event whose status is not Succeeded —
	// the set the poll loop still has work to do on.
	ListPending(ctx context.Context) ([]*model.Event, error)
	RecordAttempt(ctx context.Context, uid int32, stdout, stderr string) error
	MarkRetrying(ctx context.Context, uid int32) error
}

type PostgresEventStore struct {
	db *DB
}

func NewPostgresEventStore(db *DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

func (s *PostgresEventStore) Create(ctx context.Context, e *model.Event) (int32, error) {
	var uid int32
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO events (name, description, trigger, status)
		VALUES ($1, $2, $3, $4)
		RETURNING uid
	`, e.Name, e.Description, e.Trigger, model.EventCreated).Scan(&uid)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return uid, nil
}

func (s *PostgresEventStore) Get(ctx context.Context, uid int32) (*model.Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT uid, name, description, trigger, status, stdout, stderr, created_at, triggered_at, deleted_at
		FROM events WHERE uid = $1
	`, uid)
	return scanEvent(row)
}

func (s *PostgresEventStore) List(ctx context.Context) ([]*model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uid, name, description, trigger, status, stdout, stderr, created_at, triggered_at, deleted_at
		FROM events ORDER BY uid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresEventStore) ListPending(ctx context.Context) ([]*model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uid, name, description, trigger, status, stdout, stderr, created_at, triggered_at, deleted_at
		FROM events WHERE status <> $1 ORDER BY uid ASC
	`, model.EventSucceeded)
	if err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// RecordAttempt overwrites the Event row's captured trigger output
// unconditionally, regardless of whether the attempt succeeded.
func (s *PostgresEventStore) RecordAttempt(ctx context.Context, uid int32, stdout, stderr string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE events SET stdout = $2, stderr = $3 WHERE uid = $1`, uid, stdout, stderr)
	if err != nil {
		return fmt.Errorf("record event %d attempt output: %w", uid, err)
	}
	return nil
}

func (s *PostgresEventStore) MarkRetrying(ctx context.Context, uid int32) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE events SET status = $2, triggered_at = NOW() WHERE uid = $1
	`, uid, model.EventRetrying)
	if err != nil {
		return fmt.Errorf("mark event %d retrying: %w", uid, err)
	}
	return nil
}

func scanEvent(row scanner) (*model.Event, error) {
	e := &model.Event{}
	var name, description sql.NullString
	var triggeredAt, deletedAt sql.NullTime
	err := row.Scan(&e.UID, &name, &description, &e.Trigger, &e.Status, &e.Stdout, &e.Stderr,
		&e.CreatedAt, &triggeredAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	if name.Valid {
		e.Name = &name.String
	}
	if description.Valid {
		e.Description = &description.String
	}
	if triggeredAt.Valid {
		e.TriggeredAt = &triggeredAt.Time
	}
	if deletedAt.Valid {
		e.DeletedAt = &deletedAt.Time
	}
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
