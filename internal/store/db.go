// Package store is the persistence layer: a Postgres connection pool,
// embedded schema migrations, and one repository per persistent
// entity (engines, events, tasks, and the dispatch outbox).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/mercadolab/workflow-engine/internal/config"
)

// DB wraps *sql.DB with the pool configuration the engine expects.
type DB struct {
	*sql.DB
}

// Open connects to Postgres, configures the connection pool, and
// verifies connectivity with a bounded ping, the same shape the
// teacher's platform database package uses.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}

// Transaction runs fn within a transaction, rolling back on error or
// panic and committing otherwise.
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.DB.Close()
}
