// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package models

import (
	"time"

	"github.com/google/uuid"
)

// SongRecord is a row of the songs dimension. SongID is unique.
type SongRecord struct {
	SongID   string  `json:"song_id"`
	Title    string  `json:"title"`
	ArtistID string  `json:"artist_id"`
	Year     int     `json:"year"`
	Duration float64 `json:"duration"` // seconds
}

// ArtistRecord is a row of the artists dimension. ArtistID is unique.
type ArtistRecord struct {
	ArtistID  string   `json:"artist_id"`
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// TimeRecord is a row of the time dimension, one per playback, never deduplicated.
// Weekday counts from Monday=0 to Sunday=6.
type TimeRecord struct {
	StartTime time.Time `json:"start_time"`
	Hour      int       `json:"hour"`
	Day       int       `json:"day"`
	Week      int       `json:"week"` // ISO 8601 week of year
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	Weekday   int       `json:"weekday"`
}

// UserRecord is a row of the users dimension. UserID is unique in the sink,
// where a repeated UserID overwrites Level. The struct is comparable so a
// batch can be deduplicated on the full tuple.
type UserRecord struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	Level     string `json:"level"`
}

// SongplayRecord is the fact row. SongID and ArtistID are nil when the
// playback could not be matched to the catalog.
type SongplayRecord struct {
	SongplayID uuid.UUID `json:"songplay_id"`
	StartTime  time.Time `json:"start_time"`
	UserID     string    `json:"user_id"`
	Level      string    `json:"level"`
	SongID     *string   `json:"song_id,omitempty"`
	ArtistID   *string   `json:"artist_id,omitempty"`
	SessionID  int64     `json:"session_id"`
	Location   string    `json:"location"`
	UserAgent  string    `json:"user_agent"`
}

// Resolved reports whether the playback was matched to a catalog song.
func (r *SongplayRecord) Resolved() bool {
	return r.SongID != nil
}

// SongArtistMatch is the catalog pair a playback resolved to.
type SongArtistMatch struct {
	SongID   string
	ArtistID string
}
