// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

/*
database_schema.go - Star Schema Management

Tables:
  - songs: song dimension, keyed by song_id
  - artists: artist dimension, keyed by artist_id, nullable coordinates
  - time_dim: one row per playback, no key
  - users: user dimension, keyed by user_id, level overwritten on conflict
  - songplays: fact table keyed by a generated UUID, nullable song/artist refs

No foreign keys are declared. A playback may reference a song that never made
it into the catalog and the pipeline tolerates that.

Index Strategy:
The resolution join filters songs by (title, duration) and artists by name,
so both get a secondary index (migration 2).
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/sparkify/internal/models"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, 60*time.Second)
}

// getTableCreationQueries returns the star schema DDL.
func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS songs (
			song_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			artist_id TEXT NOT NULL,
			year INTEGER NOT NULL,
			duration DOUBLE NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS artists (
			artist_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			location TEXT,
			latitude DOUBLE,
			longitude DOUBLE
		);`,

		`CREATE TABLE IF NOT EXISTS time_dim (
			start_time TIMESTAMP NOT NULL,
			hour INTEGER NOT NULL,
			day INTEGER NOT NULL,
			week INTEGER NOT NULL,
			month INTEGER NOT NULL,
			year INTEGER NOT NULL,
			weekday INTEGER NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			first_name TEXT,
			last_name TEXT,
			gender TEXT,
			level TEXT NOT NULL
		);`,

		`CREATE TABLE IF NOT EXISTS songplays (
			songplay_id UUID PRIMARY KEY,
			start_time TIMESTAMP NOT NULL,
			user_id TEXT NOT NULL,
			level TEXT NOT NULL,
			song_id TEXT,
			artist_id TEXT,
			session_id BIGINT NOT NULL,
			location TEXT,
			user_agent TEXT
		);`,
	}
}

// getIndexQueries returns index creation SQL statements
func getIndexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_songs_title_duration ON songs(title, duration);`,
		`CREATE INDEX IF NOT EXISTS idx_artists_name ON artists(name);`,
	}
}

// EnsureSchema creates the star schema if needed by applying pending migrations.
// Existing rows are kept.
func (db *DB) EnsureSchema(ctx context.Context) error {
	ctx, cancel := schemaContext(ctx)
	defer cancel()

	return db.runVersionedMigrations(ctx)
}

// DropSchema drops every star table and the migration history.
func (db *DB) DropSchema(ctx context.Context) error {
	ctx, cancel := schemaContext(ctx)
	defer cancel()

	tables := make([]string, 0, len(models.StarTables)+1)
	// Fact first, then dimensions
	for i := len(models.StarTables) - 1; i >= 0; i-- {
		tables = append(tables, models.StarTables[i].String())
	}
	tables = append(tables, "schema_migrations")

	for _, table := range tables {
		if _, err := db.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}

// ResetSchema drops and recreates the star schema. All loaded rows are lost.
func (db *DB) ResetSchema(ctx context.Context) error {
	if err := db.DropSchema(ctx); err != nil {
		return err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	// Flush the WAL so a fresh schema survives a crash before the first load
	if err := db.Checkpoint(ctx); err != nil {
		return err
	}
	return nil
}
