// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

// Package database provides the DuckDB star schema sink for Sparkify.
//
// # Overview
//
// DuckDB is the default sink: a single-file, OLAP-oriented database reached
// through database/sql with the CGO driver github.com/duckdb/duckdb-go/v2.
// PostgreSQL is available as an alternative in package postgres.
//
// # Architecture
//
//   - database.go: connection lifecycle (open, ping, checkpoint on close)
//   - database_schema.go: star schema DDL, EnsureSchema, DropSchema, ResetSchema
//   - migrations.go: versioned migrations tracked in schema_migrations
//   - tx.go: Tx, the per-file sink session (inserts, upsert, resolution lookup)
//   - database_utils.go: context timeouts, checkpoint, row counts
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.EnsureSchema(ctx); err != nil {
//	    return err
//	}
//
//	tx, err := db.Begin(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback(ctx)
//	if err := tx.InsertSong(ctx, song); err != nil {
//	    ...
//	}
//	return tx.Commit(ctx)
//
// # Transactions
//
// Each input file is loaded inside one Tx. DuckDB aborts a transaction on the
// first failed statement, so a rejected row inside a file makes the commit
// fail and the whole file rolls back.
//
// # Thread Safety
//
// DB is safe for concurrent use. A Tx belongs to one goroutine.
package database
