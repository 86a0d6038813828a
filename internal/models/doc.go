// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

/*
Package models defines the typed records that flow through the Sparkify pipeline.

Input documents:

  - CatalogRecord: one song catalog document (song and artist fields denormalized)
  - RawEvent: one line of a listening-activity log

Star schema rows:

  - SongRecord, ArtistRecord, UserRecord, TimeRecord: dimension rows
  - SongplayRecord: the fact row, one per playback
  - SongArtistMatch: result of the (title, artist, duration) resolution lookup

Input fields are pointers so that a key that is absent (or null) can be told
apart from a zero value. Required keys carry `validate:"required"` tags and are
checked through the validation package; nothing beyond presence is checked.
Output rows use plain values except where the schema allows NULL.
*/
package models
