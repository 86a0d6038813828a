// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package etl

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/sparkify/internal/config"
	"github.com/tomtom215/sparkify/internal/logging"
	"github.com/tomtom215/sparkify/internal/metrics"
)

// fileFunc loads one input file through a session.
type fileFunc func(ctx context.Context, sink Sink, path string) (*BatchReport, error)

// Runner drives a full pipeline run: the catalog family first, then the
// event family, one file at a time, one commit per file.
type Runner struct {
	store    Store
	cfg      *config.IngestConfig
	walker   *FileWalker
	catalog  *CatalogTransformer
	events   *EventTransformer
	progress ProgressTracker
	scope    string
	clock    clockwork.Clock
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithProgress persists run statistics and committed files through p.
func WithProgress(p ProgressTracker) RunnerOption {
	return func(r *Runner) {
		r.progress = p
	}
}

// WithProgressScope names the sink that committed file markers belong to.
// Resume only skips files committed to the same scope.
func WithProgressScope(scope string) RunnerOption {
	return func(r *Runner) {
		r.scope = scope
	}
}

// WithClock replaces the time source used for run and file timings.
func WithClock(c clockwork.Clock) RunnerOption {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithEventTransformer replaces the event transformer.
func WithEventTransformer(t *EventTransformer) RunnerOption {
	return func(r *Runner) {
		r.events = t
	}
}

// NewRunner creates a pipeline runner over store.
func NewRunner(store Store, cfg *config.IngestConfig, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:    store,
		cfg:      cfg,
		walker:   NewFileWalker(cfg.Extension),
		catalog:  NewCatalogTransformer(),
		events:   NewEventTransformer(WithFactErrorAbort(cfg.AbortOnFactError())),
		progress: NewInMemoryProgress(),
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes every catalog file and then every event file.
//
// A file that cannot be read or committed is rolled back, counted as failed
// and the run continues. The run stops with an error on cancellation, on a
// missing input directory, or on ErrFactInsert under the abort policy.
func (r *Runner) Run(ctx context.Context) (*RunStats, error) {
	if logging.RunIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewRunID(ctx)
	}
	stats := NewRunStats(logging.RunIDFromContext(ctx), r.clock.Now())

	err := r.run(ctx, stats)

	stats.EndTime = r.clock.Now()
	if err != nil {
		stats.Error = err.Error()
	}
	r.saveProgress(ctx, stats)
	metrics.RecordRun(stats.Duration(), err)

	total := stats.Report.Total()
	event := logging.Ctx(ctx).Info()
	if err != nil {
		event = logging.Ctx(ctx).Error().Err(err)
	}
	event.
		Int64("files_processed", stats.FilesProcessed).
		Int64("files_failed", stats.FilesFailed).
		Int64("files_skipped", stats.FilesSkipped).
		Int64("rows_succeeded", total.Succeeded).
		Int64("rows_skipped", total.Skipped).
		Int64("rows_failed", total.Failed).
		Int64("malformed", stats.Report.Malformed).
		Dur("duration", stats.Duration()).
		Msg("Run finished")

	return stats, err
}

func (r *Runner) run(ctx context.Context, stats *RunStats) error {
	families := []struct {
		family Family
		root   string
		fn     fileFunc
	}{
		{FamilyCatalog, r.cfg.SongRoot(), r.catalog.TransformFile},
		{FamilyEvent, r.cfg.LogRoot(), r.events.TransformFile},
	}

	for _, f := range families {
		if err := r.processFamily(ctx, f.family, f.root, f.fn, stats); err != nil {
			return err
		}
	}
	return nil
}

// processFamily walks root and loads every file it finds.
func (r *Runner) processFamily(ctx context.Context, family Family, root string, fn fileFunc, stats *RunStats) error {
	files, err := r.walker.Walk(root)
	if err != nil {
		return fmt.Errorf("list %s files: %w", family, err)
	}

	total := len(files)
	stats.FilesFound += int64(total)
	logging.Ctx(ctx).Info().
		Str("family", string(family)).
		Str("dir", root).
		Int("files", total).
		Msgf("%d files found in %s", total, root)

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.processFile(ctx, family, path, fn, stats); err != nil {
			return err
		}

		logging.Ctx(ctx).Info().
			Str("family", string(family)).
			Int("done", i+1).
			Int("total", total).
			Msgf("%d/%d files processed", i+1, total)
	}
	return nil
}

// processFile loads one file in its own session. Only fatal errors are returned.
func (r *Runner) processFile(ctx context.Context, family Family, path string, fn fileFunc, stats *RunStats) error {
	fileCtx := logging.ContextWithFile(ctx, path)
	log := logging.Ctx(fileCtx)
	start := r.clock.Now()

	if r.cfg.Resume {
		done, err := r.progress.IsCommitted(fileCtx, r.scope, path)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to read progress, loading file again")
		} else if done {
			log.Debug().Msg("File committed by an earlier run, skipping")
			stats.FilesSkipped++
			metrics.RecordFile(string(family), "skipped", 0)
			return nil
		}
	}

	fail := func(err error) {
		log.Error().Err(err).Msg("File rolled back")
		stats.FilesFailed++
		metrics.RecordFile(string(family), "failed", r.clock.Since(start))
	}

	sess, err := r.store.Begin(fileCtx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fail(fmt.Errorf("begin session: %w", err))
		return nil
	}

	report, err := fn(fileCtx, sess, path)
	if err != nil {
		r.rollback(fileCtx, sess)
		fail(err)
		if errors.Is(err, ErrFactInsert) || ctx.Err() != nil {
			return err
		}
		return nil
	}

	if err := sess.Commit(fileCtx); err != nil {
		r.rollback(fileCtx, sess)
		fail(fmt.Errorf("commit: %w", err))
		return nil
	}

	stats.FilesProcessed++
	stats.Report.Merge(report)
	report.recordMetrics()
	metrics.RecordFile(string(family), "committed", r.clock.Since(start))

	if err := r.progress.MarkCommitted(fileCtx, r.scope, path); err != nil {
		log.Warn().Err(err).Msg("Failed to record committed file")
	}
	r.saveProgress(fileCtx, stats)
	return nil
}

func (r *Runner) rollback(ctx context.Context, sess Session) {
	// The run context may already be canceled; the rollback must still reach the sink
	if err := sess.Rollback(context.WithoutCancel(ctx)); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Rollback failed")
	}
}

func (r *Runner) saveProgress(ctx context.Context, stats *RunStats) {
	if err := r.progress.Save(ctx, stats); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to save progress")
	}
}
