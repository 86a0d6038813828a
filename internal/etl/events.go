// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package etl

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/sparkify/internal/logging"
	"github.com/tomtom215/sparkify/internal/models"
)

// EventTransformer loads one file of listening events into the time, users
// and songplays tables.
//
// Rows go through four passes in file order:
//  1. keep NextSong playbacks only
//  2. one time_dim row per playback
//  3. one user upsert per distinct (user_id, first_name, last_name, gender, level)
//  4. one songplays row per playback, resolved against the catalog
type EventTransformer struct {
	abortOnFactError bool
	newID            func() uuid.UUID
}

// EventOption configures an EventTransformer.
type EventOption func(*EventTransformer)

// WithFactErrorAbort makes a rejected fact row stop the file with ErrFactInsert
// instead of being counted and skipped.
func WithFactErrorAbort(abort bool) EventOption {
	return func(t *EventTransformer) {
		t.abortOnFactError = abort
	}
}

// WithIDGenerator replaces the songplay_id generator.
func WithIDGenerator(fn func() uuid.UUID) EventOption {
	return func(t *EventTransformer) {
		t.newID = fn
	}
}

// NewEventTransformer creates an event transformer.
func NewEventTransformer(opts ...EventOption) *EventTransformer {
	t := &EventTransformer{newID: uuid.New}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Filter keeps the events that are actual playbacks, in order.
func Filter(events []models.RawEvent) []models.RawEvent {
	kept := make([]models.RawEvent, 0, len(events))
	for i := range events {
		if events[i].IsPlayback() {
			kept = append(kept, events[i])
		}
	}
	return kept
}

// DeriveTimeRecord breaks a playback start time into time dimension fields, in UTC.
// Week is the ISO 8601 week; Weekday counts from Monday=0 to Sunday=6.
func DeriveTimeRecord(ts time.Time) models.TimeRecord {
	t := ts.UTC()
	_, week := t.ISOWeek()
	return models.TimeRecord{
		StartTime: t,
		Hour:      t.Hour(),
		Day:       t.Day(),
		Week:      week,
		Month:     int(t.Month()),
		Year:      t.Year(),
		Weekday:   (int(t.Weekday()) + 6) % 7,
	}
}

// DedupUsers drops exact duplicate user tuples, keeping first-seen order.
// Two rows for the same user with different levels are both kept.
func DedupUsers(users []models.UserRecord) []models.UserRecord {
	seen := make(map[models.UserRecord]struct{}, len(users))
	out := make([]models.UserRecord, 0, len(users))
	for _, u := range users {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// TransformFile reads an event file and loads it. Undecodable lines are
// counted as malformed. The returned error is a file-level failure, a
// cancellation, or ErrFactInsert under the abort policy.
func (t *EventTransformer) TransformFile(ctx context.Context, sink Sink, path string) (*BatchReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event file: %w", err)
	}
	defer f.Close()

	events, badLines, err := ReadEvents(f)
	if err != nil {
		return nil, err
	}

	report := NewBatchReport()
	for _, bad := range badLines {
		logging.Ctx(ctx).Warn().Err(bad.Err).Int("line", bad.Line).Msg("Undecodable event skipped")
		report.Malformed++
	}

	loaded, err := t.Transform(ctx, sink, events)
	report.Merge(loaded)
	return report, err
}

// Transform runs the four passes over the events of one file.
func (t *EventTransformer) Transform(ctx context.Context, sink Sink, events []models.RawEvent) (*BatchReport, error) {
	report := NewBatchReport()
	log := logging.Ctx(ctx)

	plays := Filter(events)

	valid := make([]*models.RawEvent, 0, len(plays))
	for i := range plays {
		if err := plays[i].Validate(); err != nil {
			log.Warn().Err(err).Msg("Playback skipped")
			report.Malformed++
			for _, table := range []models.Table{models.TableTime, models.TableUsers, models.TableSongplays} {
				report.Add(Result{Table: table, Outcome: OutcomeSkipped, Err: err})
			}
			continue
		}
		valid = append(valid, &plays[i])
	}

	for _, ev := range valid {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		tr := DeriveTimeRecord(ev.StartTime())
		report.Add(insertResult(ctx, models.TableTime, sink.InsertTime(ctx, &tr),
			"start_time", tr.StartTime.Format(time.RFC3339Nano)))
	}

	users := make([]models.UserRecord, 0, len(valid))
	for _, ev := range valid {
		users = append(users, ev.User())
	}
	for _, u := range DedupUsers(users) {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Add(insertResult(ctx, models.TableUsers, sink.UpsertUser(ctx, &u), "user_id", u.UserID))
	}

	for _, ev := range valid {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		play := t.songplay(ctx, sink, ev, report)
		err := sink.InsertSongplay(ctx, play)
		if err != nil && t.abortOnFactError {
			report.Add(Result{Table: models.TableSongplays, Outcome: OutcomeFailed, Err: err})
			return report, fmt.Errorf("%w: songplay %s: %v", ErrFactInsert, play.SongplayID, err)
		}
		report.Add(insertResult(ctx, models.TableSongplays, err, "songplay_id", play.SongplayID.String()))
	}

	return report, nil
}

// songplay builds the fact row for a playback, resolving its song and artist.
// A lookup error is logged and treated as a miss.
func (t *EventTransformer) songplay(ctx context.Context, sink Sink, ev *models.RawEvent, report *BatchReport) *models.SongplayRecord {
	play := &models.SongplayRecord{
		SongplayID: t.newID(),
		StartTime:  ev.StartTime(),
		UserID:     ev.UserID.String(),
		Level:      *ev.Level,
		SessionID:  *ev.SessionID,
		Location:   *ev.Location,
		UserAgent:  *ev.UserAgent,
	}

	match, err := sink.LookupSongArtist(ctx, *ev.Song, *ev.Artist, *ev.Length)
	switch {
	case err != nil:
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("song", *ev.Song).
			Str("artist", *ev.Artist).
			Msg("Song lookup failed, storing playback unresolved")
		report.Lookups.Errors++
	case match == nil:
		report.Lookups.Misses++
	default:
		songID, artistID := match.SongID, match.ArtistID
		play.SongID = &songID
		play.ArtistID = &artistID
		report.Lookups.Hits++
	}

	return play
}
