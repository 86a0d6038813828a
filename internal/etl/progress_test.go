// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package etl

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/sparkify/internal/models"
)

func sampleStats() *RunStats {
	stats := NewRunStats("abcd1234", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	stats.FilesFound = 3
	stats.FilesProcessed = 2
	stats.FilesFailed = 1
	stats.EndTime = stats.StartTime.Add(90 * time.Second)
	stats.Report.Add(Result{Table: models.TableSongplays, Outcome: OutcomeSucceeded})
	stats.Report.Add(Result{Table: models.TableSongplays, Outcome: OutcomeFailed})
	stats.Report.Lookups.Hits = 1
	stats.Report.Malformed = 2
	return stats
}

// testProgressTracker runs the behavior every ProgressTracker must share.
func testProgressTracker(t *testing.T, progress ProgressTracker) {
	ctx := context.Background()

	t.Run("returns nil when no progress saved", func(t *testing.T) {
		loaded, err := progress.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if loaded != nil {
			t.Errorf("Load() = %+v, want nil", loaded)
		}
	})

	t.Run("saves and loads stats", func(t *testing.T) {
		stats := sampleStats()
		if err := progress.Save(ctx, stats); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		// Later changes must not leak into what was saved
		stats.FilesProcessed = 99

		loaded, err := progress.Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if loaded.RunID != "abcd1234" || loaded.FilesProcessed != 2 || loaded.FilesFailed != 1 {
			t.Errorf("loaded = %+v", loaded)
		}
		if !loaded.EndTime.Equal(stats.EndTime) {
			t.Errorf("EndTime = %v, want %v", loaded.EndTime, stats.EndTime)
		}
		if got := loaded.Report.Counts(models.TableSongplays); got != (TableCounts{Succeeded: 1, Failed: 1}) {
			t.Errorf("songplays = %+v", got)
		}
		if loaded.Report.Lookups.Hits != 1 || loaded.Report.Malformed != 2 {
			t.Errorf("report = %+v", loaded.Report)
		}
	})

	t.Run("tracks committed files per scope", func(t *testing.T) {
		path := "/data/log_data/2018/11/2018-11-05-events.json"
		if ok, err := progress.IsCommitted(ctx, "warehouse.duckdb", path); err != nil || ok {
			t.Fatalf("IsCommitted() before mark = %v, %v", ok, err)
		}
		if err := progress.MarkCommitted(ctx, "warehouse.duckdb", path); err != nil {
			t.Fatalf("MarkCommitted() error = %v", err)
		}
		if err := progress.MarkCommitted(ctx, "other.duckdb", path); err != nil {
			t.Fatalf("MarkCommitted() error = %v", err)
		}
		if ok, err := progress.IsCommitted(ctx, "warehouse.duckdb", path); err != nil || !ok {
			t.Errorf("IsCommitted() after mark = %v, %v", ok, err)
		}
		if ok, _ := progress.IsCommitted(ctx, "warehouse.duckdb", path+".bak"); ok {
			t.Error("unrelated path reported committed")
		}
		if ok, _ := progress.IsCommitted(ctx, "fresh.duckdb", path); ok {
			t.Error("path committed to another sink reported committed")
		}
		// A scope that is a prefix of another does not share markers
		if ok, _ := progress.IsCommitted(ctx, "warehouse", path); ok {
			t.Error("prefix scope reported committed")
		}
	})

	t.Run("clears one scope", func(t *testing.T) {
		path := "/data/log_data/2018/11/2018-11-05-events.json"
		if err := progress.Clear(ctx, "warehouse.duckdb"); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if loaded, _ := progress.Load(ctx); loaded != nil {
			t.Errorf("Load() after Clear = %+v", loaded)
		}
		if ok, _ := progress.IsCommitted(ctx, "warehouse.duckdb", path); ok {
			t.Error("committed marker survived Clear")
		}
		if ok, _ := progress.IsCommitted(ctx, "other.duckdb", path); !ok {
			t.Error("Clear removed the markers of another scope")
		}
		// Clearing twice is fine
		if err := progress.Clear(ctx, "warehouse.duckdb"); err != nil {
			t.Errorf("second Clear() error = %v", err)
		}
	})
}

func TestInMemoryProgress(t *testing.T) {
	testProgressTracker(t, NewInMemoryProgress())
}

func TestBadgerProgress(t *testing.T) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("badger.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	progress := NewBadgerProgress(db)
	testProgressTracker(t, progress)

	if err := progress.Close(); err != nil {
		t.Errorf("Close() on borrowed db error = %v", err)
	}
	if db.IsClosed() {
		t.Error("Close() must not close a db it does not own")
	}
}

func TestOpenBadgerProgressPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "progress")
	ctx := context.Background()

	progress, err := OpenBadgerProgress(dir)
	if err != nil {
		t.Fatalf("OpenBadgerProgress() error = %v", err)
	}
	if err := progress.Save(ctx, sampleStats()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := progress.MarkCommitted(ctx, "warehouse.duckdb", "/data/song_data/A/TRA.json"); err != nil {
		t.Fatalf("MarkCommitted() error = %v", err)
	}
	if err := progress.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenBadgerProgress(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	loaded, err := reopened.Load(ctx)
	if err != nil || loaded == nil {
		t.Fatalf("Load() = %v, %v", loaded, err)
	}
	if loaded.RunID != "abcd1234" {
		t.Errorf("RunID = %q", loaded.RunID)
	}
	if ok, _ := reopened.IsCommitted(ctx, "warehouse.duckdb", "/data/song_data/A/TRA.json"); !ok {
		t.Error("committed marker lost across reopen")
	}
}
