package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"parts-assistant/internal/application/port/output"
)

// DB is the application store: users, drivers and system settings. The sales
// database is deliberately separate (see salesdb); this one holds only
// administrative state.
type DB struct {
	db     *sql.DB
	logger output.LoggerPort
}

func NewDB(ctx context.Context, dsn string, logger output.LoggerPort) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open application store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("application store unreachable: %w", err)
	}
	return &DB{db: db, logger: logger}, nil
}

func (d *DB) EnsureTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			username      TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'user',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS drivers (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL UNIQUE,
			vehicle_name TEXT NOT NULL,
			phone        TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS system_settings (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_by TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, s := range stmts {
		if _, err := d.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}
