// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package models

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sparkify/internal/validation"
)

const catalogJSON = `{"num_songs": 1, "artist_id": "AR1", "artist_latitude": null, "artist_longitude": null,
 "artist_location": "", "artist_name": "Band X", "song_id": "S1", "title": "Song A", "duration": 180.0, "year": 2000}`

func TestCatalogRecord_SongAndArtist(t *testing.T) {
	var rec CatalogRecord
	if err := json.Unmarshal([]byte(catalogJSON), &rec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	song, err := rec.Song()
	if err != nil {
		t.Fatalf("Song() error = %v", err)
	}
	want := &SongRecord{SongID: "S1", Title: "Song A", ArtistID: "AR1", Year: 2000, Duration: 180.0}
	if !reflect.DeepEqual(song, want) {
		t.Errorf("Song() = %+v, want %+v", song, want)
	}

	artist, err := rec.Artist()
	if err != nil {
		t.Fatalf("Artist() error = %v", err)
	}
	if artist.ArtistID != "AR1" || artist.Name != "Band X" || artist.Location != "" {
		t.Errorf("Artist() = %+v", artist)
	}
	if artist.Latitude != nil || artist.Longitude != nil {
		t.Errorf("expected null coordinates, got %v/%v", artist.Latitude, artist.Longitude)
	}
}

func TestCatalogRecord_MissingFieldsIsolatedPerEntity(t *testing.T) {
	tests := []struct {
		name          string
		doc           string
		wantSongErr   []string
		wantArtistErr []string
	}{
		{
			name:        "missing duration only breaks the song",
			doc:         `{"artist_id":"AR1","artist_name":"Band X","artist_location":"LA","song_id":"S1","title":"Song A","year":2000}`,
			wantSongErr: []string{"duration"},
		},
		{
			name:          "missing artist_name only breaks the artist",
			doc:           `{"artist_id":"AR1","artist_location":"LA","song_id":"S1","title":"Song A","year":2000,"duration":1.5}`,
			wantArtistErr: []string{"artist_name"},
		},
		{
			name:          "missing artist_id breaks both",
			doc:           `{"artist_name":"Band X","artist_location":"LA","song_id":"S1","title":"Song A","year":2000,"duration":1.5}`,
			wantSongErr:   []string{"artist_id"},
			wantArtistErr: []string{"artist_id"},
		},
		{
			name: "coordinates present",
			doc:  `{"artist_id":"AR1","artist_name":"Band X","artist_location":"LA","artist_latitude":34.05,"artist_longitude":-118.24,"song_id":"S1","title":"Song A","year":0,"duration":1.5}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec CatalogRecord
			if err := json.Unmarshal([]byte(tt.doc), &rec); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}

			_, songErr := rec.Song()
			checkMissing(t, "Song()", songErr, tt.wantSongErr)

			_, artistErr := rec.Artist()
			checkMissing(t, "Artist()", artistErr, tt.wantArtistErr)
		})
	}
}

func checkMissing(t *testing.T, call string, err error, want []string) {
	t.Helper()

	if len(want) == 0 {
		if err != nil {
			t.Errorf("%s error = %v, want nil", call, err)
		}
		return
	}

	var structErr *validation.StructError
	if !errors.As(err, &structErr) {
		t.Fatalf("%s error = %v, want *validation.StructError", call, err)
	}
	if !reflect.DeepEqual(structErr.Fields(), want) {
		t.Errorf("%s missing = %v, want %v", call, structErr.Fields(), want)
	}
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"string", `{"userId":"39"}`, "39", false},
		{"number", `{"userId":39}`, "39", false},
		{"empty string", `{"userId":""}`, "", false},
		{"bool", `{"userId":true}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ev RawEvent
			err := json.Unmarshal([]byte(tt.input), &ev)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected decode error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if ev.UserID == nil || ev.UserID.String() != tt.want {
				t.Errorf("UserID = %v, want %q", ev.UserID, tt.want)
			}
		})
	}

	t.Run("null leaves the key missing", func(t *testing.T) {
		var ev RawEvent
		if err := json.Unmarshal([]byte(`{"userId":null}`), &ev); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if ev.UserID != nil {
			t.Errorf("UserID = %v, want nil", *ev.UserID)
		}
	})
}

const playbackJSON = `{"artist":"Band X","auth":"Logged In","firstName":"Ann","gender":"F","itemInSession":0,
 "lastName":"Lee","length":180.0,"level":"free","location":"Austin, TX","method":"PUT","page":"NextSong",
 "registration":1540919166796.0,"sessionId":38,"song":"Song A","status":200,"ts":1541106106796,
 "userAgent":"Mozilla/5.0","userId":"1"}`

func TestRawEvent(t *testing.T) {
	var ev RawEvent
	if err := json.Unmarshal([]byte(playbackJSON), &ev); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !ev.IsPlayback() {
		t.Error("IsPlayback() = false, want true")
	}
	if err := ev.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	wantTime := time.Date(2018, time.November, 1, 21, 1, 46, 796000000, time.UTC)
	if got := ev.StartTime(); !got.Equal(wantTime) || got.Location() != time.UTC {
		t.Errorf("StartTime() = %v, want %v UTC", got, wantTime)
	}

	wantUser := UserRecord{UserID: "1", FirstName: "Ann", LastName: "Lee", Gender: "F", Level: "free"}
	if got := ev.User(); got != wantUser {
		t.Errorf("User() = %+v, want %+v", got, wantUser)
	}
}

func TestRawEvent_ValidateNamesMissingKeys(t *testing.T) {
	var ev RawEvent
	doc := `{"page":"NextSong","ts":1000,"userId":"1","firstName":"Ann","lastName":"Lee","gender":"F",
	 "level":"free","song":"Song A","artist":"Band X","sessionId":1,"location":"x"}`
	if err := json.Unmarshal([]byte(doc), &ev); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	checkMissing(t, "Validate()", ev.Validate(), []string{"length", "userAgent"})
}

func TestRawEvent_NavigationPage(t *testing.T) {
	ev := RawEvent{Page: "Home"}
	if ev.IsPlayback() {
		t.Error("Home event should not be a playback")
	}
}

func TestSongplayRecord_Resolved(t *testing.T) {
	id := "S1"
	if (&SongplayRecord{}).Resolved() {
		t.Error("empty record should not be resolved")
	}
	if !(&SongplayRecord{SongID: &id}).Resolved() {
		t.Error("record with song id should be resolved")
	}
}

func TestStarTables(t *testing.T) {
	want := []string{"songs", "artists", "time_dim", "users", "songplays"}
	if len(StarTables) != len(want) {
		t.Fatalf("StarTables len = %d, want %d", len(StarTables), len(want))
	}
	for i, table := range StarTables {
		if table.String() != want[i] {
			t.Errorf("StarTables[%d] = %s, want %s", i, table, want[i])
		}
	}
}
