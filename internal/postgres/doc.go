// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

// Package postgres provides the PostgreSQL star schema sink, built on a
// pgx v5 connection pool.
//
// It is selected when database.postgres_url (DATABASE_URL) is set or when
// --db is given a postgres:// URL. The schema matches the DuckDB sink.
// Writes run in per-row savepoints, so one rejected row does not discard
// the rest of its file.
//
// Integration tests need Docker and run with:
//
//	go test -tags integration ./internal/postgres/...
package postgres
