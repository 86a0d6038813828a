// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

package etl

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// Family is a kind of input record.
type Family string

const (
	FamilyCatalog Family = "catalog" // song catalog, one record per file
	FamilyEvent   Family = "event"   // listening activity, one event per line
)

// FileWalker lists the input files of one record family.
type FileWalker struct {
	extension string
}

// NewFileWalker returns a walker matching files that end in extension, e.g. ".json".
func NewFileWalker(extension string) *FileWalker {
	return &FileWalker{extension: extension}
}

// Walk returns the absolute paths of matching files under root, sorted lexically.
// A missing root is an error; an empty one is not.
func (w *FileWalker) Walk(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == w.extension {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", absRoot, err)
	}

	sort.Strings(files)
	return files, nil
}
