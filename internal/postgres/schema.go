// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/sparkify/internal/models"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS songs (
		song_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		artist_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		duration DOUBLE PRECISION NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS artists (
		artist_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS time_dim (
		start_time TIMESTAMP NOT NULL,
		hour INTEGER NOT NULL,
		day INTEGER NOT NULL,
		week INTEGER NOT NULL,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		weekday INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		first_name TEXT,
		last_name TEXT,
		gender TEXT,
		level TEXT NOT NULL
	)`,
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
	)`,
	`CREATE INDEX IF NOT EXISTS idx_songs_title_duration ON songs(title, duration)`,
	`CREATE INDEX IF NOT EXISTS idx_artists_name ON artists(name)`,
}

// EnsureSchema creates any missing star table. Existing rows are kept.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// DropSchema drops every star table.
func (s *Store) DropSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	for i := len(models.StarTables) - 1; i >= 0; i-- {
		table := models.StarTables[i].String()
		if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}

// ResetSchema drops and recreates the star schema. All loaded rows are lost.
func (s *Store) ResetSchema(ctx context.Context) error {
	if err := s.DropSchema(ctx); err != nil {
		return err
	}
	return s.EnsureSchema(ctx)
}
