// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package etl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomtom215/sparkify/internal/models"
)

// 2018-11-05 10:00:00 UTC, a Monday in ISO week 45
const mondayTS = int64(1541412000000)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// playLine renders one NextSong event the way the activity logs store it.
func playLine(ts int64, userID, level, song, artist string, length float64) string {
	return fmt.Sprintf(`{"artist":%q,"auth":"Logged In","firstName":"Ann","gender":"F","itemInSession":0,`+
		`"lastName":"Lee","length":%v,"level":%q,"location":"Leeds, UK","method":"PUT","page":"NextSong",`+
		`"registration":1.540919166796E12,"sessionId":42,"song":%q,"status":200,"ts":%d,`+
		`"userAgent":"Mozilla/5.0","userId":%q}`,
		artist, length, level, song, ts, userID)
}

// homeLine renders a navigation event with no song.
func homeLine(ts int64, userID string) string {
	return fmt.Sprintf(`{"artist":null,"auth":"Logged In","firstName":"Ann","gender":"F","itemInSession":1,`+
		`"lastName":"Lee","length":null,"level":"free","location":"Leeds, UK","method":"GET","page":"Home",`+
		`"registration":1.540919166796E12,"sessionId":42,"song":null,"status":200,"ts":%d,`+
		`"userAgent":"Mozilla/5.0","userId":%q}`, ts, userID)
}

func catalogJSON(songID, title, artistID, artistName string, duration float64) string {
	return fmt.Sprintf(`{"num_songs":1,"artist_id":%q,"artist_latitude":null,"artist_longitude":null,`+
		`"artist_location":"Leeds","artist_name":%q,"song_id":%q,"title":%q,"duration":%v,"year":2001}`,
		artistID, artistName, songID, title, duration)
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func mustReadEvents(t *testing.T, content string) []models.RawEvent {
	t.Helper()
	events, bad, err := ReadEvents(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ReadEvents() error = %v", err)
	}
	if len(bad) > 0 {
		t.Fatalf("ReadEvents() bad lines = %v", bad)
	}
	return events
}

func ptr[T any](v T) *T {
	return &v
}
