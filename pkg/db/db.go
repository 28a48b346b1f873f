/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package db pkg/db/db.go provides the SQLite event journal
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"

	"github.com/mfreeman451/smartblueprint/pkg/logger"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000

	// SQL statements for database initialization.
	createTablesSQL = `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event TEXT NOT NULL,
		mac TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_events_mac_time
		ON events(mac, timestamp);
	CREATE INDEX IF NOT EXISTS idx_events_time
		ON events(timestamp);
	`
)

// DB represents the database connection and operations.
type DB struct {
	*sql.DB
	now func() time.Time
	log zerolog.Logger
}

// New opens the journal at dbPath and initializes the schema.
func New(dbPath string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	// a single writer avoids SQLITE_BUSY under concurrent sinks
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToEnableWAL, err)
	}

	db := &DB{DB: sqlDB, now: time.Now, log: logger.Component("db")}
	if err := db.initSchema(); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	db.log.Info().Str("path", dbPath).Msg("event journal opened")

	return db, nil
}

// initSchema creates the database tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.Exec(createTablesSQL)

	return err
}

// RecordEvent appends one event.
func (db *DB) RecordEvent(ctx context.Context, event, mac string, payload []byte) error {
	if event == "" {
		return ErrEmptyEvent
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO events (event, mac, payload, timestamp)
		VALUES (?, ?, ?, ?)
	`, event, mac, string(payload), db.now().UTC())
	if err != nil {
		return fmt.Errorf("%w event: %w", ErrFailedToInsert, err)
	}

	return nil
}

// Events returns the most recent events, newest first. An empty mac
// returns events for every device.
func (db *DB) Events(ctx context.Context, mac string, limit int) ([]EventRecord, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}

	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	query := `SELECT id, event, mac, payload, timestamp FROM events`
	args := []any{}

	if mac != "" {
		query += ` WHERE mac = ?`
		args = append(args, mac)
	}

	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w events: %w", ErrFailedToQuery, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			db.log.Warn().Err(err).Msg("failed to close rows")
		}
	}()

	out := []EventRecord{}

	for rows.Next() {
		var (
			r       EventRecord
			payload string
		)

		if err := rows.Scan(&r.ID, &r.Event, &r.MAC, &payload, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("%w event: %w", ErrFailedToScan, err)
		}

		r.Payload = []byte(payload)
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w events: %w", ErrFailedToQuery, err)
	}

	return out, nil
}
