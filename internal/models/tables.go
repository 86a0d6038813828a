// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package models

// Table names a star schema table.
type Table string

const (
	TableSongs     Table = "songs"
	TableArtists   Table = "artists"
	TableTime      Table = "time_dim"
	TableUsers     Table = "users"
	TableSongplays Table = "songplays"
)

// StarTables lists every star schema table, dimensions first.
var StarTables = []Table{TableSongs, TableArtists, TableTime, TableUsers, TableSongplays}

func (t Table) String() string {
	return string(t)
}
