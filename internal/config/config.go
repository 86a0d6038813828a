// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package config

import (
	"path/filepath"
	"strings"
)

// Supported sink drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
)

// Fact row error policies.
const (
	// FactErrorContinue logs a rejected fact row and keeps going, like every other row kind.
	FactErrorContinue = "continue"

	// FactErrorAbort rolls back the current file and stops the run on a rejected fact row.
	FactErrorAbort = "abort"
)

// Config holds all configuration for one Sparkify process.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig()
//  2. Config File: optional YAML file (CONFIG_PATH or config.yaml)
//  3. Environment Variables: explicit mapping in envTransformFunc
//
// The loaded Config is passed explicitly to the sink constructors and the
// pipeline runner. Nothing reads configuration from package state.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return fmt.Errorf("load config: %w", err)
//	}
//	db, err := database.New(&cfg.Database)
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Progress ProgressConfig `koanf:"progress"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig selects and tunes the relational sink.
// When PostgresURL is set the PostgreSQL sink is used, otherwise DuckDB at Path.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads" validate:"gte=0"` // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // DuckDB default is true
	PostgresURL            string `koanf:"postgres_url"`
	MaxConns               int32  `koanf:"max_conns" validate:"gte=0"` // pgxpool size (0 = pgx default)
}

// Driver reports which sink implementation the configuration selects.
func (c *DatabaseConfig) Driver() string {
	if c.PostgresURL != "" {
		return DriverPostgres
	}
	return DriverDuckDB
}

// SetTarget applies a connection target given on the command line.
// postgres:// and postgresql:// URLs select PostgreSQL; anything else is a DuckDB path.
func (c *DatabaseConfig) SetTarget(target string) {
	if target == "" {
		return
	}
	if IsPostgresURL(target) {
		c.PostgresURL = target
		return
	}
	c.PostgresURL = ""
	c.Path = target
}

// IsPostgresURL reports whether target looks like a PostgreSQL connection URL.
func IsPostgresURL(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// IngestConfig describes where input files live and how rows are handled.
type IngestConfig struct {
	// DataRoot is the directory holding both record families.
	DataRoot string `koanf:"data_root" validate:"required"`

	// SongDir and LogDir are the catalog and event directories, relative to
	// DataRoot unless absolute.
	SongDir string `koanf:"song_dir" validate:"required"`
	LogDir  string `koanf:"log_dir" validate:"required"`

	// Extension marks ingestible files. Default: .json
	Extension string `koanf:"extension" validate:"required,startswith=."`

	// FactErrorPolicy is continue (default) or abort.
	FactErrorPolicy string `koanf:"fact_error_policy" validate:"oneof=continue abort"`

	// Resume skips files the progress store recorded as committed by an earlier run.
	// Off by default: rerunning a file is expected to duplicate its fact rows.
	Resume bool `koanf:"resume"`
}

// SongRoot returns the catalog directory.
func (c *IngestConfig) SongRoot() string {
	return c.resolve(c.SongDir)
}

// LogRoot returns the event directory.
func (c *IngestConfig) LogRoot() string {
	return c.resolve(c.LogDir)
}

func (c *IngestConfig) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.DataRoot, dir)
}

// AbortOnFactError reports whether a rejected fact row stops the run.
func (c *IngestConfig) AbortOnFactError() bool {
	return c.FactErrorPolicy == FactErrorAbort
}

// ProgressConfig holds the run progress store location.
type ProgressConfig struct {
	// Path is a BadgerDB directory. Empty keeps progress in memory for the run only.
	Path string `koanf:"path"`
}

// MetricsConfig holds Prometheus Pushgateway settings.
type MetricsConfig struct {
	// PushgatewayURL enables pushing run metrics when set.
	PushgatewayURL string `koanf:"pushgateway_url" validate:"omitempty,url"`
	Job            string `koanf:"job" validate:"required"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is json or console.
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load loads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
