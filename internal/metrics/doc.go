// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

/*
Package metrics provides Prometheus instrumentation for the Sparkify pipeline.

Collectors are package-level promauto variables registered on the default
registry. Callers use the Record* helpers rather than touching collectors.

# Available Metrics

  - sparkify_rows_total{table, outcome}: row outcomes (succeeded, skipped, failed)
  - sparkify_files_total{family, status}: files committed, failed or skipped
  - sparkify_file_duration_seconds{family}: per-file transform and commit time
  - sparkify_song_lookups_total{result}: resolution join hits, misses and errors
  - sparkify_sink_operation_duration_seconds{driver, operation, table}
  - sparkify_sink_operation_errors_total{driver, operation, table}
  - sparkify_run_duration_seconds, sparkify_run_last_success_timestamp_seconds

# Pushgateway

The ETL is a batch job, so there is no scrape endpoint. When
metrics.pushgateway_url is configured the runner calls Push once the run ends:

	if err := metrics.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
	    logging.Warn().Err(err).Msg("Failed to push metrics")
	}
*/
package metrics
