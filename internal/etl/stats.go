// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package etl

import (
	"time"

	"github.com/tomtom215/sparkify/internal/models"
)

// RunStats tracks one pipeline run.
type RunStats struct {
	// RunID correlates log lines of one run.
	RunID string `json:"run_id"`

	// FilesFound is the number of input files discovered across both families.
	FilesFound int64 `json:"files_found"`

	// FilesProcessed is the number of files committed.
	FilesProcessed int64 `json:"files_processed"`

	// FilesFailed is the number of files rolled back.
	FilesFailed int64 `json:"files_failed"`

	// FilesSkipped is the number of files skipped because an earlier run committed them.
	FilesSkipped int64 `json:"files_skipped"`

	// Report aggregates the row outcomes of committed files.
	Report *BatchReport `json:"report"`

	// StartTime is when the run started.
	StartTime time.Time `json:"start_time"`

	// EndTime is when the run finished (zero if still running).
	EndTime time.Time `json:"end_time"`

	// Error is the fatal error that stopped the run, if any.
	Error string `json:"error,omitempty"`
}

// NewRunStats creates stats for a run starting at start.
func NewRunStats(runID string, start time.Time) *RunStats {
	return &RunStats{
		RunID:     runID,
		Report:    NewBatchReport(),
		StartTime: start,
	}
}

// Duration returns the duration of the run.
func (s *RunStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// RowsPerSecond returns the rate of rows written successfully.
func (s *RunStats) RowsPerSecond() float64 {
	duration := s.Duration().Seconds()
	if duration <= 0 || s.Report == nil {
		return 0
	}
	return float64(s.Report.Total().Succeeded) / duration
}

// clone returns a deep copy.
func (s *RunStats) clone() *RunStats {
	c := *s
	c.Report = NewBatchReport()
	c.Report.Merge(s.Report)
	return &c
}

// RunSummary provides a human-readable summary of a run.
type RunSummary struct {
	Status         string                       `json:"status"`
	RunID          string                       `json:"run_id"`
	FilesFound     int64                        `json:"files_found"`
	FilesProcessed int64                        `json:"files_processed"`
	FilesFailed    int64                        `json:"files_failed"`
	FilesSkipped   int64                        `json:"files_skipped"`
	Tables         map[models.Table]TableCounts `json:"tables"`
	Lookups        LookupCounts                 `json:"lookups"`
	Malformed      int64                        `json:"malformed"`
	RowsPerSec     float64                      `json:"rows_per_second"`
	ElapsedSeconds float64                      `json:"elapsed_seconds"`
	StartTime      time.Time                    `json:"start_time"`
	Error          string                       `json:"error,omitempty"`
}

// ToSummary converts RunStats to a RunSummary with calculated fields.
func (s *RunStats) ToSummary(running bool) *RunSummary {
	summary := &RunSummary{
		RunID:          s.RunID,
		FilesFound:     s.FilesFound,
		FilesProcessed: s.FilesProcessed,
		FilesFailed:    s.FilesFailed,
		FilesSkipped:   s.FilesSkipped,
		Tables:         make(map[models.Table]TableCounts, len(models.StarTables)),
		RowsPerSec:     s.RowsPerSecond(),
		ElapsedSeconds: s.Duration().Seconds(),
		StartTime:      s.StartTime,
		Error:          s.Error,
	}
	if s.Report != nil {
		for _, table := range models.StarTables {
			summary.Tables[table] = s.Report.Counts(table)
		}
		summary.Lookups = s.Report.Lookups
		summary.Malformed = s.Report.Malformed
	}

	switch {
	case running:
		summary.Status = "running"
	case s.Error != "":
		summary.Status = "aborted"
	case s.EndTime.IsZero():
		summary.Status = "pending"
	case s.FilesFailed > 0:
		summary.Status = "completed_with_errors"
	default:
		summary.Status = "completed"
	}

	return summary
}
