// Package store persists reservations and queue entries in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the scheduling core.
type DB struct {
	*sql.DB
}

// Open opens the database at path and runs migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS reservations (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			barber_id TEXT NOT NULL,
			service_id TEXT NOT NULL,
			start_time DATETIME NOT NULL,
			duration_minutes INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			notes TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS queue_entries (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			service_id TEXT,
			preferred_barber_id TEXT,
			position INTEGER NOT NULL,
			estimated_wait_minutes INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'waiting',
			joined_at DATETIME NOT NULL,
			served_at DATETIME
		)`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_barber_start ON reservations(barber_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_client ON reservations(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
		`CREATE INDEX IF NOT EXISTS idx_queue_status_position ON queue_entries(status, position)`,
		`CREATE INDEX IF NOT EXISTS idx_queue_client ON queue_entries(client_id)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
