// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/sparkify/internal/config"
	"github.com/tomtom215/sparkify/internal/etl"
	"github.com/tomtom215/sparkify/internal/logging"
	"github.com/tomtom215/sparkify/internal/metrics"
	"github.com/tomtom215/sparkify/internal/sink"
)

func newETLCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "etl",
		Short: "Load catalog and event files into the star schema",
		Long: `Walk the catalog directory and then the event directory under the data root,
loading every .json file in its own transaction. Missing tables are created
first. A run summary is printed as JSON when the run ends.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runETL(cmd, opts.cfg)
		},
	}
}

func runETL(cmd *cobra.Command, cfg *config.Config) error {
	ctx := logging.ContextWithNewRunID(cmd.Context())

	target, err := sink.Open(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer closeTarget(target)

	if err := target.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	progress, closeProgress, err := openProgress(&cfg.Progress)
	if err != nil {
		return err
	}
	defer closeProgress()

	runner := etl.NewRunner(target, &cfg.Ingest,
		etl.WithProgress(progress),
		etl.WithProgressScope(target.Location()),
	)
	stats, runErr := runner.Run(ctx)

	if cfg.Metrics.PushgatewayURL != "" {
		if err := metrics.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("url", cfg.Metrics.PushgatewayURL).Msg("Failed to push metrics")
		}
	}

	summary, err := json.MarshalIndent(stats.ToSummary(false), "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(summary))

	return runErr
}

// openProgress opens the BadgerDB progress store, or an in-memory one when no path is set.
func openProgress(cfg *config.ProgressConfig) (etl.ProgressTracker, func(), error) {
	if cfg.Path == "" {
		return etl.NewInMemoryProgress(), func() {}, nil
	}

	p, err := etl.OpenBadgerProgress(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	return p, func() {
		if err := p.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close progress store")
		}
	}, nil
}
