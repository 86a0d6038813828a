// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

/*
database_utils.go - Database Utility Functions

Context Management:
  - ensureContext(): Creates a context with 30-second timeout if none provided
  - Ensures every sink statement has a timeout so a stuck query cannot hang a run

Maintenance:
  - Checkpoint(): Forces a WAL checkpoint
  - GetDatabasePath(): Returns the database file path
  - Location(): Returns the absolute database path that names this sink
  - GetRecordCounts(): Returns row counts per star table (stats command)
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tomtom215/sparkify/internal/models"
)

// ensureContext creates a context with 30-second timeout if none provided
func ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}

	return ctx, func() {}
}

// Checkpoint forces a WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, "CHECKPOINT")
	if err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// GetDatabasePath returns the path to the database file
func (db *DB) GetDatabasePath() string {
	return db.cfg.Path
}

// Location names the database for resume markers. File databases are named
// by absolute path so a relative --db resolves the same from any directory.
func (db *DB) Location() string {
	if db.cfg.Path == ":memory:" {
		return db.cfg.Path
	}
	abs, err := filepath.Abs(db.cfg.Path)
	if err != nil {
		return db.cfg.Path
	}
	return abs
}

// GetRecordCounts returns the row count of every star table.
func (db *DB) GetRecordCounts(ctx context.Context) (map[models.Table]int64, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	counts := make(map[models.Table]int64, len(models.StarTables))
	for _, table := range models.StarTables {
		var n int64
		// Table names come from a fixed list, never from input
		if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table.String()).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
