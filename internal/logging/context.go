// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	fileKey   contextKey = "file"
	loggerKey contextKey = "logger"
)

// GenerateRunID returns a short identifier for one pipeline run.
// The first 8 characters of a UUID are enough to tell runs apart in logs.
func GenerateRunID() string {
	return uuid.New().String()[:8]
}

// ContextWithRunID returns a new context carrying the given run ID.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// ContextWithNewRunID returns a context carrying a freshly generated run ID.
//
//	ctx = logging.ContextWithNewRunID(ctx)
func ContextWithNewRunID(ctx context.Context) context.Context {
	return ContextWithRunID(ctx, GenerateRunID())
}

// RunIDFromContext returns the run ID, or "" if none is set.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithFile returns a context tagged with the input file being processed.
func ContextWithFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, fileKey, path)
}

// FileFromContext returns the input file path, or "" if none is set.
func FileFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(fileKey).(string); ok {
		return p
	}
	return ""
}

// ContextWithLogger stores a logger in the context.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext returns the logger stored in ctx, or the global logger.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return logger
	}
	return Logger()
}

// Ctx returns a logger with run_id and file fields taken from ctx.
//
//	logging.Ctx(ctx).Warn().Err(err).Str("table", "users").Msg("Row rejected")
//	// {"level":"warn","run_id":"1a2b3c4d","file":"/data/log_data/a.json",...}
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := LoggerFromContext(ctx).With()

	if id := RunIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("run_id", id)
	}
	if p := FileFromContext(ctx); p != "" {
		logCtx = logCtx.Str("file", p)
	}

	l := logCtx.Logger()
	return &l
}

// WithComponent creates a child logger with a component field.
//
//	dbLogger := logging.WithComponent("duckdb")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
