// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/sparkify/internal/metrics"
	"github.com/tomtom215/sparkify/internal/models"
)

// Tx is one sink session: a DuckDB transaction covering a single input file.
//
// DuckDB has no savepoints. A statement that fails aborts the whole
// transaction, so every later statement and the final Commit fail too and the
// file is rolled back as a unit. Duplicate keys never reach that path because
// dimension inserts use ON CONFLICT.
type Tx struct {
	tx *sql.Tx
}

// Begin starts a sink session.
func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

const (
	insertSongSQL = `INSERT INTO songs (song_id, title, artist_id, year, duration)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (song_id) DO NOTHING`

	insertArtistSQL = `INSERT INTO artists (artist_id, name, location, latitude, longitude)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (artist_id) DO NOTHING`

	insertTimeSQL = `INSERT INTO time_dim (start_time, hour, day, week, month, year, weekday)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	upsertUserSQL = `INSERT INTO users (user_id, first_name, last_name, gender, level)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET level = EXCLUDED.level`

	insertSongplaySQL = `INSERT INTO songplays
		(songplay_id, start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// Exact duration equality. Ties resolve to the lowest (song_id, artist_id).
	lookupSongArtistSQL = `SELECT s.song_id, s.artist_id
		FROM songs s
		JOIN artists a ON s.artist_id = a.artist_id
		WHERE s.title = ? AND a.name = ? AND s.duration = ?
		ORDER BY s.song_id, s.artist_id
		LIMIT 1`
)

// exec runs one write statement and records its metrics.
func (t *Tx) exec(ctx context.Context, operation string, table models.Table, query string, args ...any) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := t.tx.ExecContext(ctx, query, args...)
	metrics.RecordSinkOp(DriverName, operation, table.String(), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s %s: %w", operation, table, err)
	}
	return nil
}

// InsertSong inserts a song, ignoring a duplicate song_id.
func (t *Tx) InsertSong(ctx context.Context, s *models.SongRecord) error {
	return t.exec(ctx, "insert", models.TableSongs, insertSongSQL,
		s.SongID, s.Title, s.ArtistID, s.Year, s.Duration)
}

// InsertArtist inserts an artist, ignoring a duplicate artist_id.
func (t *Tx) InsertArtist(ctx context.Context, a *models.ArtistRecord) error {
	return t.exec(ctx, "insert", models.TableArtists, insertArtistSQL,
		a.ArtistID, a.Name, a.Location, nullFloat(a.Latitude), nullFloat(a.Longitude))
}

// InsertTime inserts a time dimension row.
func (t *Tx) InsertTime(ctx context.Context, r *models.TimeRecord) error {
	return t.exec(ctx, "insert", models.TableTime, insertTimeSQL,
		r.StartTime, r.Hour, r.Day, r.Week, r.Month, r.Year, r.Weekday)
}

// UpsertUser inserts a user or overwrites the level of an existing one.
func (t *Tx) UpsertUser(ctx context.Context, u *models.UserRecord) error {
	return t.exec(ctx, "upsert", models.TableUsers, upsertUserSQL,
		u.UserID, u.FirstName, u.LastName, u.Gender, u.Level)
}

// InsertSongplay inserts a fact row.
func (t *Tx) InsertSongplay(ctx context.Context, p *models.SongplayRecord) error {
	return t.exec(ctx, "insert", models.TableSongplays, insertSongplaySQL,
		p.SongplayID.String(), p.StartTime, p.UserID, p.Level,
		nullString(p.SongID), nullString(p.ArtistID),
		p.SessionID, p.Location, p.UserAgent)
}

// LookupSongArtist finds the catalog song matching a playback.
// Returns nil and no error when nothing matches.
func (t *Tx) LookupSongArtist(ctx context.Context, title, artist string, duration float64) (*models.SongArtistMatch, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var m models.SongArtistMatch
	err := t.tx.QueryRowContext(ctx, lookupSongArtistSQL, title, artist, duration).Scan(&m.SongID, &m.ArtistID)
	miss := errors.Is(err, sql.ErrNoRows)
	if miss {
		err = nil
	}
	metrics.RecordSinkOp(DriverName, "lookup", models.TableSongs.String(), time.Since(start), err)
	if miss {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup song %q by %q: %w", title, artist, err)
	}
	return &m, nil
}

// Commit commits the session.
func (t *Tx) Commit(_ context.Context) error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the session. Rolling back a finished session is a no-op.
func (t *Tx) Rollback(_ context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
