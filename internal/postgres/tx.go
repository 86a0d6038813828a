// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tomtom215/sparkify/internal/metrics"
	"github.com/tomtom215/sparkify/internal/models"
)

// Tx is one sink session covering a single input file.
//
// Every write runs inside its own savepoint, so a rejected row is undone on
// its own and the rest of the file still commits.
type Tx struct {
	tx pgx.Tx
}

// Begin starts a sink session.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

const (
	insertSongSQL = `INSERT INTO songs (song_id, title, artist_id, year, duration)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (song_id) DO NOTHING`

	insertArtistSQL = `INSERT INTO artists (artist_id, name, location, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (artist_id) DO NOTHING`

	insertTimeSQL = `INSERT INTO time_dim (start_time, hour, day, week, month, year, weekday)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	upsertUserSQL = `INSERT INTO users (user_id, first_name, last_name, gender, level)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET level = EXCLUDED.level`

	insertSongplaySQL = `INSERT INTO songplays
		(songplay_id, start_time, user_id, level, song_id, artist_id, session_id, location, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	// Exact duration equality. Ties resolve to the lowest (song_id, artist_id).
	lookupSongArtistSQL = `SELECT s.song_id, s.artist_id
		FROM songs s
		JOIN artists a ON s.artist_id = a.artist_id
		WHERE s.title = $1 AND a.name = $2 AND s.duration = $3
		ORDER BY s.song_id, s.artist_id
		LIMIT 1`
)

// exec runs one write statement inside a savepoint and records its metrics.
func (t *Tx) exec(ctx context.Context, operation string, table models.Table, query string, args ...any) error {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	err := t.savepoint(ctx, func(sp pgx.Tx) error {
		_, err := sp.Exec(ctx, query, args...)
		return err
	})
	metrics.RecordSinkOp(DriverName, operation, table.String(), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s %s: %w", operation, table, err)
	}
	return nil
}

// savepoint runs fn in a nested transaction, rolling back to the savepoint on error.
func (t *Tx) savepoint(ctx context.Context, fn func(pgx.Tx) error) error {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(sp); err != nil {
		_ = sp.Rollback(ctx) // the outer transaction stays usable
		return err
	}
	return sp.Commit(ctx)
}

// InsertSong inserts a song, ignoring a duplicate song_id.
func (t *Tx) InsertSong(ctx context.Context, s *models.SongRecord) error {
	return t.exec(ctx, "insert", models.TableSongs, insertSongSQL,
		s.SongID, s.Title, s.ArtistID, s.Year, s.Duration)
}

// InsertArtist inserts an artist, ignoring a duplicate artist_id.
func (t *Tx) InsertArtist(ctx context.Context, a *models.ArtistRecord) error {
	return t.exec(ctx, "insert", models.TableArtists, insertArtistSQL,
		a.ArtistID, a.Name, a.Location, a.Latitude, a.Longitude)
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
		p.SongID, p.ArtistID, p.SessionID, p.Location, p.UserAgent)
}

// LookupSongArtist finds the catalog song matching a playback.
// Returns nil and no error when nothing matches.
func (t *Tx) LookupSongArtist(ctx context.Context, title, artist string, duration float64) (*models.SongArtistMatch, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var m models.SongArtistMatch
	err := t.savepoint(ctx, func(sp pgx.Tx) error {
		return sp.QueryRow(ctx, lookupSongArtistSQL, title, artist, duration).Scan(&m.SongID, &m.ArtistID)
	})
	miss := errors.Is(err, pgx.ErrNoRows)
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
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the session. Rolling back a finished session is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}
