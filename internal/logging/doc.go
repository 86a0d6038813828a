// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

// Package logging provides centralized zerolog-based structured logging for Sparkify.
//
// A single global logger is configured once from main and then used through
// package-level helpers. JSON output is the default; console output is meant
// for local runs.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("root", root).Int("files", n).Msg("Files found")
//	logging.Err(err).Msg("Failed to open database")
//
// # Run Context
//
// Every pipeline run gets a short run ID, and every file being processed is
// attached to the context. Ctx picks both up so row-level warnings can be
// traced back to their run and input file:
//
//	ctx = logging.ContextWithNewRunID(ctx)
//	ctx = logging.ContextWithFile(ctx, path)
//	logging.Ctx(ctx).Warn().Err(err).Str("table", "songs").Msg("Row rejected")
//
// # Configuration
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// Always terminate event chains with Msg or Send; an unterminated chain is
// never written.
package logging
