// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package etl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const (
	// lastRunKey is the BadgerDB key for the stats of the latest run.
	lastRunKey = "run:last"

	// committedPrefix prefixes one key per committed input file, followed by
	// the sink scope, a NUL separator and the file path.
	committedPrefix = "file:committed:"
)

func committedKey(scope, path string) []byte {
	return []byte(committedScopePrefix(scope) + path)
}

func committedScopePrefix(scope string) string {
	return committedPrefix + scope + "\x00"
}

// ProgressTracker persists run statistics and the set of committed files.
//
// Committed files are recorded per scope, which names the sink the file was
// committed to. A file committed to one database is not committed to another.
type ProgressTracker interface {
	// Save persists the current run statistics.
	Save(ctx context.Context, stats *RunStats) error

	// Load retrieves the last saved run statistics, or nil if none.
	Load(ctx context.Context) (*RunStats, error)

	// Clear removes saved statistics and the committed file markers of scope.
	Clear(ctx context.Context, scope string) error

	// MarkCommitted records that path was committed to the sink named by scope.
	MarkCommitted(ctx context.Context, scope, path string) error

	// IsCommitted reports whether path was committed to scope by an earlier run.
	IsCommitted(ctx context.Context, scope, path string) (bool, error)
}

// BadgerProgress implements ProgressTracker using BadgerDB for persistence.
type BadgerProgress struct {
	db     *badger.DB
	ownsDB bool
}

// NewBadgerProgress creates a progress tracker on an open BadgerDB instance.
func NewBadgerProgress(db *badger.DB) *BadgerProgress {
	return &BadgerProgress{db: db}
}

// OpenBadgerProgress opens (or creates) a BadgerDB directory at path.
// Close releases it.
func OpenBadgerProgress(path string) (*BadgerProgress, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for progress: %w", err)
	}
	return &BadgerProgress{db: db, ownsDB: true}, nil
}

// Close closes the database if it was opened by OpenBadgerProgress.
func (p *BadgerProgress) Close() error {
	if p.ownsDB {
		return p.db.Close()
	}
	return nil
}

// Save persists the current run statistics to BadgerDB.
func (p *BadgerProgress) Save(_ context.Context, stats *RunStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(lastRunKey), data)
	})
}

// Load retrieves the last saved run statistics from BadgerDB.
// Returns nil, nil if nothing has been saved.
func (p *BadgerProgress) Load(_ context.Context) (*RunStats, error) {
	var stats RunStats
	found := false

	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(lastRunKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stats)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if !found {
		return nil, nil
	}

	return &stats, nil
}

// Clear removes saved statistics and the committed file markers of scope.
func (p *BadgerProgress) Clear(_ context.Context, scope string) error {
	if err := p.db.DropPrefix([]byte(committedScopePrefix(scope))); err != nil {
		return fmt.Errorf("clear committed files: %w", err)
	}
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(lastRunKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Already cleared
		}
		return err
	})
}

// MarkCommitted records path with the commit time.
func (p *BadgerProgress) MarkCommitted(_ context.Context, scope, path string) error {
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(committedKey(scope, path), []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

// IsCommitted reports whether path has a commit marker.
func (p *BadgerProgress) IsCommitted(_ context.Context, scope, path string) (bool, error) {
	committed := false
	err := p.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(committedKey(scope, path))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		committed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("check committed %s: %w", path, err)
	}
	return committed, nil
}

// InMemoryProgress implements ProgressTracker using in-memory storage.
// Nothing survives the process; resume has no effect across runs.
type InMemoryProgress struct {
	mu        sync.Mutex
	stats     *RunStats
	committed map[string]map[string]struct{} // scope -> paths
}

// NewInMemoryProgress creates a new in-memory progress tracker.
func NewInMemoryProgress() *InMemoryProgress {
	return &InMemoryProgress{committed: make(map[string]map[string]struct{})}
}

// Save stores a copy of the statistics.
func (p *InMemoryProgress) Save(_ context.Context, stats *RunStats) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = stats.clone()
	return nil
}

// Load returns a copy of the stored statistics.
func (p *InMemoryProgress) Load(_ context.Context) (*RunStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stats == nil {
		return nil, nil
	}
	return p.stats.clone(), nil
}

// Clear removes the stored statistics and the committed markers of scope.
func (p *InMemoryProgress) Clear(_ context.Context, scope string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = nil
	delete(p.committed, scope)
	return nil
}

// MarkCommitted records path under scope.
func (p *InMemoryProgress) MarkCommitted(_ context.Context, scope, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	paths, ok := p.committed[scope]
	if !ok {
		paths = make(map[string]struct{})
		p.committed[scope] = paths
	}
	paths[path] = struct{}{}
	return nil
}

// IsCommitted reports whether path was recorded under scope.
func (p *InMemoryProgress) IsCommitted(_ context.Context, scope, path string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.committed[scope][path]
	return ok, nil
}
