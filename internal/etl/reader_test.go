// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package etl

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestReadEvents(t *testing.T) {
	content := lines(
		playLine(mondayTS, "7", "free", "Song A", "Band X", 180.0),
		"",
		"   ",
		homeLine(mondayTS+1000, "7"),
		`{"page":"NextSong", "ts": `,
		`{"page":"NextSong","userId":39,"ts":1541412000000}`,
	)

	events, bad, err := ReadEvents(strings.NewReader(content))
	if err != nil {
		t.Fatalf("ReadEvents() error = %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("decoded %d events, want 3", len(events))
	}
	if len(bad) != 1 {
		t.Fatalf("bad lines = %d, want 1", len(bad))
	}
	if bad[0].Line != 5 {
		t.Errorf("bad line number = %d, want 5", bad[0].Line)
	}
	if !errors.Is(bad[0], ErrMalformedRecord) {
		t.Error("LineError should match ErrMalformedRecord")
	}

	if events[0].Page != "NextSong" || *events[0].Song != "Song A" || *events[0].Length != 180.0 {
		t.Errorf("first event decoded wrong: %+v", events[0])
	}
	if events[1].Song != nil {
		t.Errorf("Home event song = %v, want nil", *events[1].Song)
	}
	if got := events[2].UserID.String(); got != "39" {
		t.Errorf("numeric userId decoded as %q, want 39", got)
	}
}

func TestReadEventsIOError(t *testing.T) {
	_, _, err := ReadEvents(iotest.ErrReader(errors.New("disk gone")))
	if err == nil {
		t.Fatal("expected I/O error")
	}
	if errors.Is(err, ErrMalformedRecord) {
		t.Error("I/O failure must not be reported as malformed")
	}
}

func TestReadCatalogRecord(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		rec, err := ReadCatalogRecord(strings.NewReader(catalogJSON("S1", "Song A", "A1", "Band X", 180.0)))
		if err != nil {
			t.Fatalf("ReadCatalogRecord() error = %v", err)
		}
		if *rec.SongID != "S1" || *rec.ArtistName != "Band X" {
			t.Errorf("decoded %+v", rec)
		}
		if rec.ArtistLatitude != nil {
			t.Errorf("latitude = %v, want nil", *rec.ArtistLatitude)
		}
	})

	t.Run("only first object is used", func(t *testing.T) {
		content := lines(
			catalogJSON("S1", "Song A", "A1", "Band X", 180.0),
			catalogJSON("S2", "Song B", "A2", "Band Y", 200.0),
		)
		rec, err := ReadCatalogRecord(strings.NewReader(content))
		if err != nil {
			t.Fatalf("ReadCatalogRecord() error = %v", err)
		}
		if *rec.SongID != "S1" {
			t.Errorf("song_id = %q, want S1", *rec.SongID)
		}
	})

	t.Run("pretty printed", func(t *testing.T) {
		content := "{\n  \"song_id\": \"S1\",\n  \"title\": \"Song A\"\n}\n"
		rec, err := ReadCatalogRecord(strings.NewReader(content))
		if err != nil {
			t.Fatalf("ReadCatalogRecord() error = %v", err)
		}
		if *rec.Title != "Song A" {
			t.Errorf("title = %q", *rec.Title)
		}
	})

	malformed := map[string]string{
		"empty":     "",
		"blank":     "\n\n",
		"truncated": `{"song_id": "S1", "title": `,
		"not json":  "song_id=S1",
	}
	for name, content := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCatalogRecord(strings.NewReader(content))
			if !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("error = %v, want ErrMalformedRecord", err)
			}
		})
	}
}
