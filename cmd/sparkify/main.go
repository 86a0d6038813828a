// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

// Package main is the entry point for the sparkify command.
//
// Sparkify loads a song catalog and listening-activity logs from JSON files
// into a star schema: four dimension tables (songs, artists, time_dim, users)
// around one fact table (songplays).
//
// # Commands
//
//	sparkify create-tables   drop and recreate the star schema
//	sparkify etl             load song_data, then log_data, one commit per file
//	sparkify stats           print row counts per table
//
// # Configuration
//
// Settings come from defaults, an optional config.yaml (CONFIG_PATH) and
// environment variables (Koanf v2). Two flags override them:
//
//	--data-root   directory holding song_data/ and log_data/
//	--db          DuckDB file path, or a postgres:// URL for PostgreSQL
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the run. The file in flight is rolled back;
// files committed before the signal stay committed.
//
// # Exit Status
//
// 0 when the run completes, even if some rows or files were rejected.
// 1 on configuration errors, connection failures, cancellation, or a
// rejected fact row under FACT_ERROR_POLICY=abort.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/sparkify/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		logging.Err(err).Msg("sparkify failed")
		os.Exit(1)
	}
}
