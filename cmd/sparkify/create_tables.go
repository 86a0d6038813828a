// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/sparkify/internal/config"
	"github.com/tomtom215/sparkify/internal/logging"
	"github.com/tomtom215/sparkify/internal/sink"
)

func newCreateTablesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create-tables",
		Short: "Drop and recreate the star schema",
		Long: `Drop every star schema table, then create songs, artists, time_dim, users
and songplays again. All loaded data is lost, and the resume markers recorded
for this database are cleared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			target, err := sink.Open(ctx, &opts.cfg.Database)
			if err != nil {
				return err
			}
			defer closeTarget(target)

			if err := target.ResetSchema(ctx); err != nil {
				return fmt.Errorf("reset schema: %w", err)
			}

			// Files committed before the reset are no longer in the schema
			if opts.cfg.Progress.Path != "" {
				if err := clearProgress(ctx, &opts.cfg.Progress, target.Location()); err != nil {
					return fmt.Errorf("clear progress: %w", err)
				}
			}

			logging.Info().Str("driver", target.Driver()).Msg("Star schema created")
			fmt.Fprintln(cmd.OutOrStdout(), "star schema created")
			return nil
		},
	}
}

// clearProgress drops the committed file markers recorded for location.
func clearProgress(ctx context.Context, cfg *config.ProgressConfig, location string) error {
	progress, closeProgress, err := openProgress(cfg)
	if err != nil {
		return err
	}
	defer closeProgress()

	if err := progress.Clear(ctx, location); err != nil {
		return err
	}
	logging.Info().Str("location", location).Msg("Resume markers cleared")
	return nil
}

// closeTarget closes the sink and logs a failure; the command result is already decided.
func closeTarget(target sink.Target) {
	if err := target.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close sink")
	}
}
