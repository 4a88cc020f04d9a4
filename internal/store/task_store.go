package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mercadolab/workflow-engine/internal/model"
)

// TaskStore persists Task rows. Tasks are owned by submission for
// insertion and by whichever worker currently holds them for status
// writes.
type TaskStore interface {
	CreateMany(ctx context.Context, eventUID int32, tasks []*model.Task) error
	Get(ctx context.Context, uid int32) (*model.Task, error)
	List(ctx context.Context) ([]*model.Task, error)
	ListByEvent(ctx context.Context, eventUID int32) ([]*model.Task, error)
	// Status returns the task's current status, used by taskproc to
	// re-check the task's own row before executing it.
	Status(ctx context.Context, uid int32) (model.TaskStatus, error)
	MarkRunning(ctx context.Context, uid int32) error
	MarkCompleted(ctx context.Context, uid int32, stdout, stderr string) error
	MarkFailed(ctx context.Context, uid int32, stdout, stderr string) error
}

type PostgresTaskStore struct {
	db *DB
}

func NewPostgresTaskStore(db *DB) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

func (s *PostgresTaskStore) CreateMany(ctx context.Context, eventUID int32, tasks []*model.Task) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		return insertTasks(ctx, tx, eventUID, tasks)
	})
}

func insertTasks(ctx context.Context, tx *sql.Tx, eventUID int32, tasks []*model.Task) error {
	for _, t := range tasks {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO tasks (event_uid, name, description, on_failure, path, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING uid
		`, eventUID, t.Name, t.Description, t.OnFailure, t.Path, model.TaskPending).Scan(&t.UID)
		if err != nil {
			return fmt.Errorf("insert task for event %d: %w", eventUID, err)
		}
		t.EventUID = eventUID
		t.Status = model.TaskPending
	}
	return nil
}

func (s *PostgresTaskStore) Get(ctx context.Context, uid int32) (*model.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT uid, event_uid, name, description, on_failure, path, status, stdout, stderr,
		       created_at, updated_at, completed_at, deleted_at
		FROM tasks WHERE uid = $1
	`, uid)
	return scanTask(row)
}

func (s *PostgresTaskStore) List(ctx context.Context) ([]*model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uid, event_uid, name, description, on_failure, path, status, stdout, stderr,
		       created_at, updated_at, completed_at, deleted_at
		FROM tasks ORDER BY uid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *PostgresTaskStore) ListByEvent(ctx context.Context, eventUID int32) ([]*model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uid, event_uid, name, description, on_failure, path, status, stdout, stderr,
		       created_at, updated_at, completed_at, deleted_at
		FROM tasks WHERE event_uid = $1 ORDER BY uid ASC
	`, eventUID)
	if err != nil {
		return nil, fmt.Errorf("list tasks for event %d: %w", eventUID, err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *PostgresTaskStore) Status(ctx context.Context, uid int32) (model.TaskStatus, error) {
	var status model.TaskStatus
	err := s.db.QueryRowContext(ctx, `SELECT status FROM tasks WHERE uid = $1`, uid).Scan(&status)
	if err != nil {
		return "", fmt.Errorf("read task %d status: %w", uid, err)
	}
	return status, nil
}

func (s *PostgresTaskStore) MarkRunning(ctx context.Context, uid int32) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = $2, updated_at = NOW() WHERE uid = $1
	`, uid, model.TaskRunning)
	if err != nil {
		return fmt.Errorf("mark task %d running: %w", uid, err)
	}
	return nil
}

func (s *PostgresTaskStore) MarkCompleted(ctx context.Context, uid int32, stdout, stderr string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = $2, stdout = $3, stderr = $4, updated_at = NOW(), completed_at = NOW()
		WHERE uid = $1
	`, uid, model.TaskCompleted, stdout, stderr)
	if err != nil {
		return fmt.Errorf("mark task %d completed: %w", uid, err)
	}
	return nil
}

func (s *PostgresTaskStore) MarkFailed(ctx context.Context, uid int32, stdout, stderr string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = $2, stdout = $3, stderr = $4, updated_at = NOW()
		WHERE uid = $1
	`, uid, model.TaskFailed, stdout, stderr)
	if err != nil {
		return fmt.Errorf("mark task %d failed: %w", uid, err)
	}
	return nil
}

func scanTask(row scanner) (*model.Task, error) {
	t := &model.Task{}
	var name, description, onFailure sql.NullString
	var completedAt, deletedAt sql.NullTime
	err := row.Scan(&t.UID, &t.EventUID, &name, &description, &onFailure, &t.Path, &t.Status,
		&t.Stdout, &t.Stderr, &t.CreatedAt, &t.UpdatedAt, &completedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}
	if name.Valid {
		t.Name = &name.String
	}
	if description.Valid {
		t.Description = &description.String
	}
	if onFailure.Valid {
		t.OnFailure = &onFailure.String
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}
	return t, nil
}

func scanTasks(rows *sql.Rows) ([]*model.Task, error) {
	var tasks []*model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
