// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package config

import (
	"fmt"

	"github.com/tomtom215/sparkify/internal/validation"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	return c.validateDatabase()
}

// validateDatabase checks the cross-field rules struct tags cannot express.
func (c *Config) validateDatabase() error {
	if c.Database.PostgresURL != "" {
		if !IsPostgresURL(c.Database.PostgresURL) {
			return fmt.Errorf("DATABASE_URL must start with postgres:// or postgresql://")
		}
		return nil
	}

	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required when DATABASE_URL is not set")
	}
	if c.Database.MaxMemory == "" {
		return fmt.Errorf("DUCKDB_MAX_MEMORY must not be empty")
	}
	return nil
}
