// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// Row outcomes, per star table
	RowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparkify_rows_total",
			Help: "Rows handed to the sink, by table and outcome (succeeded, skipped, failed)",
		},
		[]string{"table", "outcome"},
	)

	// File outcomes, per record family
	FilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparkify_files_total",
			Help: "Input files handled, by family (catalog, event) and status (committed, failed, skipped)",
		},
		[]string{"family", "status"},
	)

	FileDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sparkify_file_duration_seconds",
			Help:    "Time to transform and commit one input file",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"family"},
	)

	// Resolution join outcomes
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparkify_song_lookups_total",
			Help: "Song/artist resolution lookups, by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	// Sink statement metrics
	SinkOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sparkify_sink_operation_duration_seconds",
			Help:    "Duration of sink statements in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"driver", "operation", "table"},
	)

	SinkOpErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparkify_sink_operation_errors_total",
			Help: "Sink statements that returned an error",
		},
		[]string{"driver", "operation", "table"},
	)

	// Run metrics
	RunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sparkify_run_duration_seconds",
			Help: "Wall time of the last pipeline run",
		},
	)

	RunLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sparkify_run_last_success_timestamp_seconds",
			Help: "Unix time of the last pipeline run that finished without a fatal error",
		},
	)
)

// RecordRows adds n rows with the same outcome for a table.
func RecordRows(table, outcome string, n int64) {
	if n <= 0 {
		return
	}
	RowsTotal.WithLabelValues(table, outcome).Add(float64(n))
}

// RecordFile records one processed input file.
func RecordFile(family, status string, duration time.Duration) {
	FilesTotal.WithLabelValues(family, status).Inc()
	if status != "skipped" {
		FileDuration.WithLabelValues(family).Observe(duration.Seconds())
	}
}

// RecordLookups adds n resolution lookups with result hit, miss or error.
func RecordLookups(result string, n int64) {
	if n <= 0 {
		return
	}
	LookupsTotal.WithLabelValues(result).Add(float64(n))
}

// RecordSinkOp records one sink statement.
func RecordSinkOp(driver, operation, table string, duration time.Duration, err error) {
	SinkOpDuration.WithLabelValues(driver, operation, table).Observe(duration.Seconds())
	if err != nil {
		SinkOpErrors.WithLabelValues(driver, operation, table).Inc()
	}
}

// RecordRun records the end of a pipeline run.
func RecordRun(duration time.Duration, err error) {
	RunDuration.Set(duration.Seconds())
	if err == nil {
		RunLastSuccess.SetToCurrentTime()
	}
}

// Push sends every registered metric to a Prometheus Pushgateway.
// A batch job exits before any scrape, so metrics are pushed once at the end of a run.
func Push(ctx context.Context, gatewayURL, job string) error {
	return PushFrom(ctx, prometheus.DefaultGatherer, gatewayURL, job)
}

// PushFrom pushes the metrics of g, which lets tests use an isolated registry.
func PushFrom(ctx context.Context, g prometheus.Gatherer, gatewayURL, job string) error {
	if gatewayURL == "" {
		return fmt.Errorf("pushgateway URL is required")
	}
	if err := push.New(gatewayURL, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
