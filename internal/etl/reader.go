// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package etl

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sparkify/internal/models"
)

// maxLineSize bounds one event line. Real events are well under 1 KiB.
const maxLineSize = 1 << 20

// LineError is an event line that could not be decoded.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Is reports every LineError as ErrMalformedRecord.
func (e *LineError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// ReadEvents decodes one event per line. Blank lines are ignored.
// Lines that fail to decode are returned as LineErrors and do not stop the
// read; the returned error is reserved for I/O failures.
func ReadEvents(r io.Reader) ([]models.RawEvent, []*LineError, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		events  []models.RawEvent
		badRows []*LineError
		lineNo  int
	)
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var ev models.RawEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			badRows = append(badRows, &LineError{Line: lineNo, Err: err})
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return events, badRows, fmt.Errorf("read events: %w", err)
	}
	return events, badRows, nil
}

// ReadCatalogRecord decodes the first JSON object of a catalog file.
// Anything after it is ignored. Decode failures wrap ErrMalformedRecord;
// any other error is an I/O failure.
func ReadCatalogRecord(r io.Reader) (*models.CatalogRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var rec models.CatalogRecord
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty catalog file", ErrMalformedRecord)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return &rec, nil
}
