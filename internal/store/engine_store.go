package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mercadolab/workflow-engine/internal/model"
)

// EngineStore persists Engine rows. Engine rows are owned by their
// supervisor process for status/timestamp writes; stop_signal is
// owned by the CLI.
type EngineStore interface {
	Create(ctx context.Context, name, ipAddress string) (*model.Engine, error)
	Get(ctx context.Context, uid int32) (*model.Engine, error)
	List(ctx context.Context) ([]*model.Engine, error)
	SetStatus(ctx context.Context, uid int32, status model.EngineStatus) error
	SetEventProcessStatus(ctx context.Context, uid int32, status model.ProcessStatus) error
	SetTaskProcessStatus(ctx context.Context, uid int32, status model.ProcessStatus) error
	Stop(ctx context.Context, uid int32) error
	RequestStopAll(ctx context.Context) error
	StopSignal(ctx context.Context, uid int32) (bool, error)
}

// PostgresEngineStore is the lib/pq-backed EngineStore.
type PostgresEngineStore struct {
	db *DB
}

func NewPostgresEngineStore(db *DB) *PostgresEngineStore {
	return &PostgresEngineStore{db: db}
}

func (s *PostgresEngineStore) Create(ctx context.Context, name, ipAddress string) (*model.Engine, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO engines (name, ip_address, status, stop_signal, task_process_status, event_process_status)
		VALUES ($1, $2, $3, FALSE, $4, $4)
		RETURNING uid, started_at
	`, name, ipAddress, model.EngineStarting, model.ProcessStopped)

	e := &model.Engine{
		Name:               name,
		IPAddress:          ipAddress,
		Status:             model.EngineStarting,
		TaskProcessStatus:  model.ProcessStopped,
		EventProcessStatus: model.ProcessStopped,
	}
	if err := row.Scan(&e.UID, &e.StartedAt); err != nil {
		return nil, fmt.Errorf("insert engine: %w", err)
	}
	return e, nil
}

func (s *PostgresEngineStore) Get(ctx context.Context, uid int32) (*model.Engine, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT uid, name, ip_address, status, stop_signal, task_process_status, event_process_status, started_at, stopped_at
		FROM engines WHERE uid = $1
	`, uid)
	return scanEngine(row)
}

func (s *PostgresEngineStore) List(ctx context.Context) ([]*model.Engine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT uid, name, ip_address, status, stop_signal, task_process_status, event_process_status, started_at, stopped_at
		FROM engines ORDER BY uid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list engines: %w", err)
	}
	defer rows.Close()

	var engines []*model.Engine
	for rows.Next() {
		e, err := scanEngine(rows)
		if err != nil {
			return nil, err
		}
		engines = append(engines, e)
	}
	return engines, rows.Err()
}

func (s *PostgresEngineStore) SetStatus(ctx context.Context, uid int32, status model.EngineStatus) error {
	var err error
	if status == model.EngineStopped {
		_, err = s.db.ExecContext(ctx, `UPDATE engines SET status = $2, stopped_at = NOW() WHERE uid = $1`, uid, status)
	} else {
		_, err = s.db.ExecContext(ctx, `UPDATE engines SET status = $2 WHERE uid = $1`, uid, status)
	}
	if err != nil {
		return fmt.Errorf("set engine %d status: %w", uid, err)
	}
	return nil
}

func (s *PostgresEngineStore) SetEventProcessStatus(ctx context.Context, uid int32, status model.ProcessStatus) error {
	_, err := s.db.ExecContext(ctx, `UPDATE engines SET event_process_status = $2 WHERE uid = $1`, uid, status)
	if err != nil {
		return fmt.Errorf("set engine %d event_process_status: %w", uid, err)
	}
	return nil
}

func (s *PostgresEngineStore) SetTaskProcessStatus(ctx context.Context, uid int32, status model.ProcessStatus) error {
	_, err := s.db.ExecContext(ctx, `UPDATE engines SET task_process_status = $2 WHERE uid = $1`, uid, status)
	if err != nil {
		return fmt.Errorf("set engine %d task_process_status: %w", uid, err)
	}
	return nil
}

// Stop sets stop_signal on one engine. stop_signal is monotonic within
// an engine's active lifetime, so this is a plain unconditional write,
// not a CAS — setting it twice is equivalent to once.
func (s *PostgresEngineStore) Stop(ctx context.Context, uid int32) error {
	_, err := s.db.ExecContext(ctx, `UPDATE engines SET stop_signal = TRUE WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("stop engine %d: %w", uid, err)
	}
	return nil
}

// RequestStopAll implements the CLI's `stop` verb: set stop_signal=true
// on every engine row.
func (s *PostgresEngineStore) RequestStopAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `UPDATE engines SET stop_signal = TRUE`)
	if err != nil {
		return fmt.Errorf("stop all engines: %w", err)
	}
	return nil
}

func (s *PostgresEngineStore) StopSignal(ctx context.Context, uid int32) (bool, error) {
	var stop bool
	err := s.db.QueryRowContext(ctx, `SELECT stop_signal FROM engines WHERE uid = $1`, uid).Scan(&stop)
	if err != nil {
		return false, fmt.Errorf("read engine %d stop_signal: %w", uid, err)
	}
	return stop, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEngine(row scanner) (*model.Engine, error) {
	e := &model.Engine{}
	var stoppedAt sql.NullTime
	err := row.Scan(&e.UID, &e.Name, &e.IPAddress, &e.Status, &e.StopSignal,
		&e.TaskProcessStatus, &e.EventProcessStatus, &e.StartedAt, &stoppedAt)
	if err != nil {
		return nil, fmt.Errorf("scan engine: %w", err)
	}
	if stoppedAt.Valid {
		e.StoppedAt = &stoppedAt.Time
	}
	return e, nil
}
