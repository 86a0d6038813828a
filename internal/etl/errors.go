// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package etl

import "errors"

var (
	// ErrConnection means the sink could not be reached. Fatal before any file is processed.
	ErrConnection = errors.New("sink connection failed")

	// ErrFactInsert means a fact row was rejected while the abort policy is active.
	ErrFactInsert = errors.New("fact row rejected")

	// ErrMalformedRecord marks an input record that is undecodable or missing a required key.
	ErrMalformedRecord = errors.New("malformed record")
)
