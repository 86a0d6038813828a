// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/sparkify/internal/config"
	"github.com/tomtom215/sparkify/internal/models"
	"github.com/tomtom215/sparkify/internal/testinfra"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	pg := testinfra.StartPostgres(t)
	ctx := context.Background()

	store, err := New(ctx, &config.DatabaseConfig{PostgresURL: pg.URL, MaxConns: 2})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(store.Close)

	if err := store.ResetSchema(ctx); err != nil {
		t.Fatalf("ResetSchema() error = %v", err)
	}
	return store
}

func ptr[T any](v T) *T {
	return &v
}

func TestStoreLoadAndResolve(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	start := time.Date(2018, 11, 5, 10, 0, 0, 0, time.UTC)

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	song := models.SongRecord{SongID: "S1", Title: "Song A", ArtistID: "A1", Year: 2001, Duration: 180.0}
	artist := models.ArtistRecord{ArtistID: "A1", Name: "Band X", Location: "Leeds"}
	if err := tx.InsertSong(ctx, &song); err != nil {
		t.Fatalf("InsertSong() error = %v", err)
	}
	if err := tx.InsertSong(ctx, &song); err != nil {
		t.Fatalf("duplicate InsertSong() error = %v", err)
	}
	if err := tx.InsertArtist(ctx, &artist); err != nil {
		t.Fatalf("InsertArtist() error = %v", err)
	}

	hit, err := tx.LookupSongArtist(ctx, "Song A", "Band X", 180.0)
	if err != nil || hit == nil || hit.SongID != "S1" || hit.ArtistID != "A1" {
		t.Fatalf("LookupSongArtist(hit) = %+v, %v", hit, err)
	}
	miss, err := tx.LookupSongArtist(ctx, "Song A", "Band X", 181.0)
	if err != nil || miss != nil {
		t.Fatalf("LookupSongArtist(miss) = %+v, %v", miss, err)
	}

	free := models.UserRecord{UserID: "7", FirstName: "Ann", LastName: "Lee", Gender: "F", Level: "free"}
	paid := free
	paid.Level = "paid"
	if err := tx.UpsertUser(ctx, &free); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if err := tx.UpsertUser(ctx, &paid); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}

	tr := models.TimeRecord{StartTime: start, Hour: 10, Day: 5, Week: 45, Month: 11, Year: 2018, Weekday: 0}
	if err := tx.InsertTime(ctx, &tr); err != nil {
		t.Fatalf("InsertTime() error = %v", err)
	}
	play := models.SongplayRecord{
		SongplayID: uuid.New(), StartTime: start, UserID: "7", Level: "paid",
		SongID: ptr(hit.SongID), ArtistID: ptr(hit.ArtistID), SessionID: 1, Location: "Leeds", UserAgent: "Mozilla",
	}
	if err := tx.InsertSongplay(ctx, &play); err != nil {
		t.Fatalf("InsertSongplay() error = %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	counts, err := store.GetRecordCounts(ctx)
	if err != nil {
		t.Fatalf("GetRecordCounts() error = %v", err)
	}
	want := map[models.Table]int64{
		models.TableSongs: 1, models.TableArtists: 1, models.TableTime: 1,
		models.TableUsers: 1, models.TableSongplays: 1,
	}
	for table, n := range want {
		if counts[table] != n {
			t.Errorf("%s = %d, want %d", table, counts[table], n)
		}
	}

	var level string
	if err := store.pool.QueryRow(ctx, "SELECT level FROM users WHERE user_id = '7'").Scan(&level); err != nil {
		t.Fatalf("query level: %v", err)
	}
	if level != "paid" {
		t.Errorf("level = %q, want paid", level)
	}
}

func TestStoreSavepointIsolatesRejectedRow(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	// Same primary key twice: the second fact insert is rejected
	id := uuid.New()
	play := models.SongplayRecord{SongplayID: id, StartTime: time.Now().UTC(), UserID: "1", Level: "free", SessionID: 1}
	if err := tx.InsertSongplay(ctx, &play); err != nil {
		t.Fatalf("InsertSongplay() error = %v", err)
	}
	if err := tx.InsertSongplay(ctx, &play); err == nil {
		t.Fatal("expected duplicate key error")
	}

	u := models.UserRecord{UserID: "1", Level: "free"}
	if err := tx.UpsertUser(ctx, &u); err != nil {
		t.Fatalf("UpsertUser() after rejected row error = %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	counts, err := store.GetRecordCounts(ctx)
	if err != nil {
		t.Fatalf("GetRecordCounts() error = %v", err)
	}
	if counts[models.TableSongplays] != 1 || counts[models.TableUsers] != 1 {
		t.Errorf("counts = %v, want 1 songplay and 1 user", counts)
	}
}

func TestStoreRollback(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	u := models.UserRecord{UserID: "1", Level: "free"}
	if err := tx.UpsertUser(ctx, &u); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Errorf("second Rollback() error = %v", err)
	}

	counts, err := store.GetRecordCounts(ctx)
	if err != nil {
		t.Fatalf("GetRecordCounts() error = %v", err)
	}
	if counts[models.TableUsers] != 0 {
		t.Errorf("users = %d after rollback, want 0", counts[models.TableUsers])
	}
}
