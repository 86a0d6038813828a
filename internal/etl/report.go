// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package etl

import (
	"github.com/tomtom215/sparkify/internal/metrics"
	"github.com/tomtom215/sparkify/internal/models"
)

// Outcome is what happened to one row handed to the sink.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeSkipped   Outcome = "skipped" // a required key was missing, nothing was sent
	OutcomeFailed    Outcome = "failed"  // the sink rejected the row
)

// Result is the outcome of one row.
type Result struct {
	Table   models.Table
	Outcome Outcome
	Err     error
}

// TableCounts aggregates row outcomes for one table.
type TableCounts struct {
	Succeeded int64 `json:"succeeded"`
	Skipped   int64 `json:"skipped"`
	Failed    int64 `json:"failed"`
}

// Attempts is the number of rows that reached any outcome.
func (c TableCounts) Attempts() int64 {
	return c.Succeeded + c.Skipped + c.Failed
}

// LookupCounts aggregates resolution join outcomes.
type LookupCounts struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Errors int64 `json:"errors"`
}

// BatchReport aggregates the results of one file, or of a whole run once merged.
type BatchReport struct {
	Tables    map[models.Table]*TableCounts `json:"tables"`
	Lookups   LookupCounts                  `json:"lookups"`
	Malformed int64                         `json:"malformed"` // undecodable or incomplete input records
}

// NewBatchReport returns an empty report with a zero entry for every star table.
func NewBatchReport() *BatchReport {
	r := &BatchReport{Tables: make(map[models.Table]*TableCounts, len(models.StarTables))}
	for _, t := range models.StarTables {
		r.Tables[t] = &TableCounts{}
	}
	return r
}

// Add records one row result.
func (r *BatchReport) Add(res Result) {
	c := r.table(res.Table)
	switch res.Outcome {
	case OutcomeSucceeded:
		c.Succeeded++
	case OutcomeSkipped:
		c.Skipped++
	case OutcomeFailed:
		c.Failed++
	}
}

// Counts returns the counts for one table.
func (r *BatchReport) Counts(table models.Table) TableCounts {
	if c, ok := r.Tables[table]; ok {
		return *c
	}
	return TableCounts{}
}

// Total sums the counts of every table.
func (r *BatchReport) Total() TableCounts {
	var total TableCounts
	for _, c := range r.Tables {
		total.Succeeded += c.Succeeded
		total.Skipped += c.Skipped
		total.Failed += c.Failed
	}
	return total
}

// Merge adds the counts of other into r.
func (r *BatchReport) Merge(other *BatchReport) {
	if other == nil {
		return
	}
	for table, c := range other.Tables {
		dst := r.table(table)
		dst.Succeeded += c.Succeeded
		dst.Skipped += c.Skipped
		dst.Failed += c.Failed
	}
	r.Lookups.Hits += other.Lookups.Hits
	r.Lookups.Misses += other.Lookups.Misses
	r.Lookups.Errors += other.Lookups.Errors
	r.Malformed += other.Malformed
}

// recordMetrics exports the row counts of a committed file.
func (r *BatchReport) recordMetrics() {
	for table, c := range r.Tables {
		metrics.RecordRows(table.String(), string(OutcomeSucceeded), c.Succeeded)
		metrics.RecordRows(table.String(), string(OutcomeSkipped), c.Skipped)
		metrics.RecordRows(table.String(), string(OutcomeFailed), c.Failed)
	}
	metrics.RecordLookups("hit", r.Lookups.Hits)
	metrics.RecordLookups("miss", r.Lookups.Misses)
	metrics.RecordLookups("error", r.Lookups.Errors)
}

func (r *BatchReport) table(t models.Table) *TableCounts {
	if r.Tables == nil {
		r.Tables = make(map[models.Table]*TableCounts)
	}
	c, ok := r.Tables[t]
	if !ok {
		c = &TableCounts{}
		r.Tables[t] = c
	}
	return c
}
