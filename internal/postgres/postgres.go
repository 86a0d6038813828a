// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package postgres

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/sparkify/internal/config"
	"github.com/tomtom215/sparkify/internal/logging"
	"github.com/tomtom215/sparkify/internal/models"
)

// DriverName labels PostgreSQL sink metrics.
const DriverName = "postgres"

// Store is the PostgreSQL star schema sink backed by a pgx connection pool.
type Store struct {
	pool     *pgxpool.Pool
	cfg      *config.DatabaseConfig
	location string
}

// New connects to cfg.PostgresURL and verifies the connection.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to %s:%d: %w",
			poolCfg.ConnConfig.Host, poolCfg.ConnConfig.Port, err)
	}

	logger := logging.WithComponent(DriverName)
	logger.Debug().
		Str("host", poolCfg.ConnConfig.Host).
		Str("database", poolCfg.ConnConfig.Database).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("PostgreSQL pool opened")

	return &Store{pool: pool, cfg: cfg, location: locationOf(poolCfg)}, nil
}

// locationOf names the server and database without credentials.
func locationOf(poolCfg *pgxpool.Config) string {
	cc := poolCfg.ConnConfig
	return "postgres://" + net.JoinHostPort(cc.Host, strconv.Itoa(int(cc.Port))) + "/" + cc.Database
}

// Location names the database for resume markers.
func (s *Store) Location() string {
	return s.location
}

// Close closes every pooled connection.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// GetRecordCounts returns the row count of every star table.
func (s *Store) GetRecordCounts(ctx context.Context) (map[models.Table]int64, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	counts := make(map[models.Table]int64, len(models.StarTables))
	for _, table := range models.StarTables {
		var n int64
		if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table.String()).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// ensureContext creates a context with 30-second timeout if none provided
func ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}
	return ctx, func() {}
}
