// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package sink

import (
	"context"
	"fmt"

	"github.com/tomtom215/sparkify/internal/config"
	"github.com/tomtom215/sparkify/internal/database"
	"github.com/tomtom215/sparkify/internal/etl"
	"github.com/tomtom215/sparkify/internal/logging"
	"github.com/tomtom215/sparkify/internal/models"
	"github.com/tomtom215/sparkify/internal/postgres"
)

// Target is an open sink.
type Target interface {
	etl.Store

	// Driver names the implementation: duckdb or postgres.
	Driver() string

	// Location names the database written to, without credentials. Resume
	// markers are scoped by it.
	Location() string

	// EnsureSchema creates missing star tables and indexes.
	EnsureSchema(ctx context.Context) error

	// ResetSchema drops every star table and creates the schema again.
	ResetSchema(ctx context.Context) error

	// GetRecordCounts returns the row count of every star table.
	GetRecordCounts(ctx context.Context) (map[models.Table]int64, error)

	Close() error
}

// Open connects to the sink cfg selects and verifies the connection.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (Target, error) {
	switch cfg.Driver() {
	case config.DriverPostgres:
		store, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", etl.ErrConnection, err)
		}
		logging.Info().Str("driver", postgres.DriverName).Msg("Sink connected")
		return &postgresTarget{Store: store}, nil

	default:
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", etl.ErrConnection, err)
		}
		logging.Info().
			Str("driver", database.DriverName).
			Str("path", db.Location()).
			Msg("Sink connected")
		return &duckdbTarget{DB: db}, nil
	}
}

type duckdbTarget struct {
	*database.DB
}

func (t *duckdbTarget) Driver() string {
	return database.DriverName
}

func (t *duckdbTarget) Begin(ctx context.Context) (etl.Session, error) {
	tx, err := t.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

type postgresTarget struct {
	*postgres.Store
}

func (t *postgresTarget) Driver() string {
	return postgres.DriverName
}

func (t *postgresTarget) Begin(ctx context.Context) (etl.Session, error) {
	tx, err := t.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (t *postgresTarget) Close() error {
	t.Store.Close()
	return nil
}
