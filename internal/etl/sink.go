// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package etl

import (
	"context"

	"github.com/tomtom215/sparkify/internal/models"
)

// Sink receives star schema rows. Implementations live in packages database
// (DuckDB) and postgres.
type Sink interface {
	// InsertSong inserts a song, ignoring a duplicate song_id.
	InsertSong(ctx context.Context, s *models.SongRecord) error

	// InsertArtist inserts an artist, ignoring a duplicate artist_id.
	InsertArtist(ctx context.Context, a *models.ArtistRecord) error

	// InsertTime inserts a time dimension row. Never deduplicated.
	InsertTime(ctx context.Context, t *models.TimeRecord) error

	// UpsertUser inserts a user; an existing user_id gets its level overwritten.
	UpsertUser(ctx context.Context, u *models.UserRecord) error

	// InsertSongplay inserts a fact row. Never deduplicated.
	InsertSongplay(ctx context.Context, p *models.SongplayRecord) error

	// LookupSongArtist matches a playback to the catalog by exact title,
	// artist name and duration. A miss returns nil and no error.
	LookupSongArtist(ctx context.Context, title, artist string, duration float64) (*models.SongArtistMatch, error)
}

// Session is a Sink scoped to one input file, committed or rolled back as a unit.
type Session interface {
	Sink
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store opens sessions.
type Store interface {
	Begin(ctx context.Context) (Session, error)
}
