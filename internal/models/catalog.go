// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package models

import (
	"github.com/tomtom215/sparkify/internal/validation"
)

// CatalogRecord is one song catalog document.
//
// Example:
//
//	{"num_songs": 1, "artist_id": "ARD7TVE1187B99BFB1", "artist_latitude": null,
//	 "artist_longitude": null, "artist_location": "California - LA",
//	 "artist_name": "Casual", "song_id": "SOMZWCG12A8C13C480",
//	 "title": "I Didn't Mean To", "duration": 218.93179, "year": 0}
type CatalogRecord struct {
	SongID          *string  `json:"song_id"`
	Title           *string  `json:"title"`
	ArtistID        *string  `json:"artist_id"`
	Year            *int     `json:"year"`
	Duration        *float64 `json:"duration"`
	ArtistName      *string  `json:"artist_name"`
	ArtistLocation  *string  `json:"artist_location"`
	ArtistLatitude  *float64 `json:"artist_latitude"`
	ArtistLongitude *float64 `json:"artist_longitude"`
}

// catalogSongFields is the song projection checked for presence.
type catalogSongFields struct {
	SongID   *string  `json:"song_id" validate:"required"`
	Title    *string  `json:"title" validate:"required"`
	ArtistID *string  `json:"artist_id" validate:"required"`
	Year     *int     `json:"year" validate:"required"`
	Duration *float64 `json:"duration" validate:"required"`
}

// catalogArtistFields is the artist projection checked for presence.
// Latitude and longitude may be absent or null.
type catalogArtistFields struct {
	ArtistID *string `json:"artist_id" validate:"required"`
	Name     *string `json:"artist_name" validate:"required"`
	Location *string `json:"artist_location" validate:"required"`
}

// Song extracts the song dimension row.
// Returns a *validation.StructError naming the missing keys when the record is incomplete.
func (r *CatalogRecord) Song() (*SongRecord, error) {
	fields := catalogSongFields{
		SongID:   r.SongID,
		Title:    r.Title,
		ArtistID: r.ArtistID,
		Year:     r.Year,
		Duration: r.Duration,
	}
	if err := validation.ValidateStruct(&fields); err != nil {
		return nil, err
	}

	return &SongRecord{
		SongID:   *r.SongID,
		Title:    *r.Title,
		ArtistID: *r.ArtistID,
		Year:     *r.Year,
		Duration: *r.Duration,
	}, nil
}

// Artist extracts the artist dimension row.
// Returns a *validation.StructError naming the missing keys when the record is incomplete.
func (r *CatalogRecord) Artist() (*ArtistRecord, error) {
	fields := catalogArtistFields{
		ArtistID: r.ArtistID,
		Name:     r.ArtistName,
		Location: r.ArtistLocation,
	}
	if err := validation.ValidateStruct(&fields); err != nil {
		return nil, err
	}

	return &ArtistRecord{
		ArtistID:  *r.ArtistID,
		Name:      *r.ArtistName,
		Location:  *r.ArtistLocation,
		Latitude:  r.ArtistLatitude,
		Longitude: r.ArtistLongitude,
	}, nil
}
