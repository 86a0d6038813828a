// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

/*
Package sink opens the relational sink selected by configuration.

Two implementations exist:

  - database: embedded DuckDB file (default, DUCKDB_PATH)
  - postgres: PostgreSQL through pgxpool (DATABASE_URL)

Open returns a Target, which is both an etl.Store for the pipeline runner
and the schema administration surface used by the create-tables and stats
commands. Connection failures are wrapped with etl.ErrConnection.

	target, err := sink.Open(ctx, &cfg.Database)
	if err != nil {
	    return err // errors.Is(err, etl.ErrConnection)
	}
	defer target.Close()

	if err := target.EnsureSchema(ctx); err != nil {
	    return err
	}
	stats, err := etl.NewRunner(target, &cfg.Ingest).Run(ctx)
*/
package sink
