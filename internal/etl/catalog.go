// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package etl

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tomtom215/sparkify/internal/logging"
	"github.com/tomtom215/sparkify/internal/models"
)

// CatalogTransformer loads song catalog records into the songs and artists dimensions.
//
// Each record yields exactly one song insert attempt and one artist insert
// attempt. The two are independent: a missing artist key does not stop the
// song, and a rejected song does not stop the artist.
type CatalogTransformer struct{}

// NewCatalogTransformer creates a catalog transformer.
func NewCatalogTransformer() *CatalogTransformer {
	return &CatalogTransformer{}
}

// TransformFile reads the first record of a catalog file and loads it.
// The returned error is a file-level failure (open or read); everything else
// is reported per row.
func (c *CatalogTransformer) TransformFile(ctx context.Context, sink Sink, path string) (*BatchReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	rec, err := ReadCatalogRecord(f)
	if err != nil {
		if !errors.Is(err, ErrMalformedRecord) {
			return nil, err
		}
		logging.Ctx(ctx).Warn().Err(err).Msg("Catalog record skipped")
		report := NewBatchReport()
		report.Malformed++
		report.Add(Result{Table: models.TableSongs, Outcome: OutcomeSkipped, Err: err})
		report.Add(Result{Table: models.TableArtists, Outcome: OutcomeSkipped, Err: err})
		return report, nil
	}

	return c.Transform(ctx, sink, rec), nil
}

// Transform loads one catalog record. Sink errors are logged and counted,
// never returned.
func (c *CatalogTransformer) Transform(ctx context.Context, sink Sink, rec *models.CatalogRecord) *BatchReport {
	report := NewBatchReport()
	log := logging.Ctx(ctx)
	malformed := false

	song, err := rec.Song()
	switch {
	case err != nil:
		malformed = true
		log.Warn().Err(err).Str("table", models.TableSongs.String()).Msg("Row skipped")
		report.Add(Result{Table: models.TableSongs, Outcome: OutcomeSkipped, Err: err})
	default:
		report.Add(insertResult(ctx, models.TableSongs, sink.InsertSong(ctx, song), "song_id", song.SongID))
	}

	artist, err := rec.Artist()
	switch {
	case err != nil:
		malformed = true
		log.Warn().Err(err).Str("table", models.TableArtists.String()).Msg("Row skipped")
		report.Add(Result{Table: models.TableArtists, Outcome: OutcomeSkipped, Err: err})
	default:
		report.Add(insertResult(ctx, models.TableArtists, sink.InsertArtist(ctx, artist), "artist_id", artist.ArtistID))
	}

	if malformed {
		report.Malformed++
	}
	return report
}

// insertResult turns a sink error into a Result, logging rejected rows with their key.
func insertResult(ctx context.Context, table models.Table, err error, keyName, key string) Result {
	if err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("table", table.String()).
			Str(keyName, key).
			Msg("Row rejected by sink")
		return Result{Table: table, Outcome: OutcomeFailed, Err: err}
	}
	return Result{Table: table, Outcome: OutcomeSucceeded}
}
