// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to run a real PostgreSQL server for the
// pgx sink tests. Everything is behind the integration build tag:
//
//	go test -tags integration ./internal/postgres/...
//
// # PostgreSQL Container
//
//	func TestSink(t *testing.T) {
//	    pg := testinfra.StartPostgres(t)
//	    store, err := postgres.New(ctx, &config.DatabaseConfig{PostgresURL: pg.URL})
//	    // ...
//	}
//
// Tests are skipped when Docker is unavailable. The first run pulls
// postgres:15-alpine; later runs use the cached image.
package testinfra
