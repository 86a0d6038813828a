// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sparkify/internal/validation"
)

// PagePlayback is the page value of an event that represents an actual playback.
const PagePlayback = "NextSong"

// FlexString decodes a JSON string or number into a string.
// Activity logs carry userId as "39" in most files and as 39 in some exports.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// RawEvent is one line of a listening-activity log.
//
// Only Page is read for every event; the other keys are required only once
// the event passed the NextSong filter, because navigation events such as
// "Home" or "Logout" carry no song, artist or length.
type RawEvent struct {
	Page      string      `json:"page"`
	TS        *int64      `json:"ts" validate:"required"`
	UserID    *FlexString `json:"userId" validate:"required"`
	FirstName *string     `json:"firstName" validate:"required"`
	LastName  *string     `json:"lastName" validate:"required"`
	Gender    *string     `json:"gender" validate:"required"`
	Level     *string     `json:"level" validate:"required"`
	Song      *string     `json:"song" validate:"required"`
	Artist    *string     `json:"artist" validate:"required"`
	Length    *float64    `json:"length" validate:"required"`
	SessionID *int64      `json:"sessionId" validate:"required"`
	Location  *string     `json:"location" validate:"required"`
	UserAgent *string     `json:"userAgent" validate:"required"`
}

// IsPlayback reports whether the event is a NextSong playback.
func (e *RawEvent) IsPlayback() bool {
	return e.Page == PagePlayback
}

// Validate checks that every key a playback needs is present.
// Returns a *validation.StructError naming the missing keys.
func (e *RawEvent) Validate() error {
	if err := validation.ValidateStruct(e); err != nil {
		return err
	}
	return nil
}

// StartTime converts the millisecond epoch timestamp to UTC.
// Callers must Validate first.
func (e *RawEvent) StartTime() time.Time {
	return time.UnixMilli(*e.TS).UTC()
}

// User projects the event onto the user dimension. Callers must Validate first.
func (e *RawEvent) User() UserRecord {
	return UserRecord{
		UserID:    e.UserID.String(),
		FirstName: *e.FirstName,
		LastName:  *e.LastName,
		Gender:    *e.Gender,
		Level:     *e.Level,
	}
}
