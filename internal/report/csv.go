// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report writes the per-file outcomes of a run: the CSV log and the JSON-lines manifest.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/medbrief/dicom-normalizer/normalize"
)

// DefaultLogName is the name of the CSV log in the output root.
const DefaultLogName = "normalize_log.csv"

// WriteCSV writes the header and one row per outcome to w.
func WriteCSV(w io.Writer, outcomes []normalize.Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(normalize.Columns); err != nil {
		return err
	}
	for _, o := range outcomes {
		if err := cw.Write(o.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile replaces the file at path with the CSV log of outcomes. Nothing is written when
// there are no outcomes.
func WriteCSVFile(path string, outcomes []normalize.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating log: %w", err)
	}
	if err := WriteCSV(f, outcomes); err != nil {
		f.Close()
		return fmt.Errorf("writing log %s: %w", path, err)
	}
	return f.Close()
}

// CSVLog appends rows to a CSV log as outcomes arrive. The header is written only when the file is
// empty. It is safe for concurrent use.
type CSVLog struct {
	mu   sync.Mutex
	f    *os.File
	w    *csv.Writer
	rows int
}

// OpenCSVLog opens the log at path for appending, creating it if needed.
func OpenCSVLog(path string) (*CSVLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening log: %w", err)
	}

	l := &CSVLog{f: f, w: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := l.write(normalize.Columns); err != nil {
			f.Close()
			return nil, err
		}
	}
	return l, nil
}

// Append writes the row of o and flushes it to the file.
func (l *CSVLog) Append(o normalize.Outcome) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.write(o.Row()); err != nil {
		return err
	}
	l.rows++
	return nil
}

// Rows returns the number of rows appended since the log was opened.
func (l *CSVLog) Rows() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rows
}

func (l *CSVLog) write(record []string) error {
	if err := l.w.Write(record); err != nil {
		return fmt.Errorf("writing log: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("writing log: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *CSVLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
