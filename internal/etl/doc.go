// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

/*
Package etl implements the Sparkify transform-and-load pipeline.

Two families of line-delimited JSON input are loaded into a star schema:

  - catalog records (one per file) become songs and artists rows
  - listening events (one per line) become time_dim, users and songplays rows

# Components

  - FileWalker lists input files of a family, sorted
  - CatalogTransformer loads one catalog record
  - EventTransformer filters, derives time rows, deduplicates users and
    resolves fact rows against the catalog
  - Runner walks both families, catalog first, and commits once per file
  - ProgressTracker persists RunStats and committed files (BadgerDB or memory)

The pipeline depends only on the Store, Session and Sink interfaces. The
DuckDB and PostgreSQL implementations live in packages database and postgres.

# Error Handling

Row-level problems never stop a file. A missing key is counted as skipped, a
sink rejection as failed, and both are logged with the file, table and key.
A file that cannot be read or committed is rolled back and the run moves on.
With ingest.fact_error_policy set to abort, a rejected songplays row rolls
back its file and stops the run with ErrFactInsert.

# Usage

	runner := etl.NewRunner(target, &cfg.Ingest,
		etl.WithProgress(progress),
		etl.WithProgressScope(target.Location()),
	)
	stats, err := runner.Run(ctx)
	if err != nil {
	    return err
	}
	fmt.Println(stats.ToSummary(false).Status)
*/
package etl
