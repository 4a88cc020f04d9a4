package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/mercadolab/workflow-engine/internal/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migration is one embedded, numbered SQL file.
type migration struct {
	version  int64
	name     string
	checksum string
	sql      string
}

func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	migrations := make([]migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, name, err := parseMigrationFilename(entry.Name())
		if err != nil {
			return nil, err
		}

		contents, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		sum := sha256.Sum256(contents)
		migrations = append(migrations, migration{
			version:  version,
			name:     name,
			checksum: hex.EncodeToString(sum[:]),
			sql:      string(contents),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })
	return migrations, nil
}

func parseMigrationFilename(filename string) (int64, string, error) {
	base := strings.TrimSuffix(filename, ".sql")
	parts := strings.SplitN(base, "_", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("malformed migration filename %q", filename)
	}

	version, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed migration version in %q: %w", filename, err)
	}

	return version, parts[1], nil
}

func ensureMigrationTable(ctx context.Context, db *DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    BIGINT PRIMARY KEY,
			name       TEXT NOT NULL,
			checksum   TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}
	return nil
}

func currentVersion(ctx context.Context, db *DB) (int64, error) {
	var version int64
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read current schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every embedded migration newer than the current
// schema_migrations version, idempotently. It is safe to call on every
// supervisor start and from the CLI's `migration` verb.
func Migrate(ctx context.Context, db *DB) error {
	if err := ensureMigrationTable(ctx, db); err != nil {
		return err
	}

	current, err := currentVersion(ctx, db)
	if err != nil {
		return err
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	log := logger.WithComponent("migrate")

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		log.Info().Int64("version", m.version).Str("name", m.name).Msg("applying migration")

		err := db.Transaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return fmt.Errorf("apply migration %d_%s: %w", m.version, m.name, err)
			}

			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)`,
				m.version, m.name, m.checksum,
			)
			if err != nil {
				return fmt.Errorf("record migration %d_%s: %w", m.version, m.name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
