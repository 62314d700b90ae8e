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

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/medbrief/dicom-normalizer/normalize"
)

// ManifestEntry is one line of the manifest.
type ManifestEntry struct {
	Input        string `json:"input"`
	Output       string `json:"output"`
	Status       string `json:"status"`
	Part10In     string `json:"part10_in"`
	TSIn         string `json:"ts_in"`
	Decompressed string `json:"decompressed"`
	TSOut        string `json:"ts_out"`
	Manufacturer string `json:"manufacturer"`
	Modality     string `json:"modality"`
	SOPClass     string `json:"sop_class"`
	Error        string `json:"error"`
	BLAKE3       string `json:"blake3,omitempty"`
	DurationMS   int64  `json:"duration_ms"`
}

// NewManifestEntry returns the manifest entry of o.
func NewManifestEntry(o normalize.Outcome) ManifestEntry {
	return ManifestEntry{
		Input:        o.Input,
		Output:       o.Output,
		Status:       string(o.Status),
		Part10In:     o.Part10In.String(),
		TSIn:         o.TransferSyntaxIn,
		Decompressed: o.Decompressed.String(),
		TSOut:        o.TransferSyntaxOut,
		Manufacturer: o.Manufacturer,
		Modality:     o.Modality,
		SOPClass:     o.SOPClass,
		Error:        o.ErrorText(),
		BLAKE3:       o.Digest,
		DurationMS:   o.Duration.Milliseconds(),
	}
}

// WriteManifest writes one JSON object per outcome, one per line.
func WriteManifest(w io.Writer, outcomes []normalize.Outcome) error {
	enc := json.NewEncoder(w)
	for _, o := range outcomes {
		if err := enc.Encode(NewManifestEntry(o)); err != nil {
			return err
		}
	}
	return nil
}

// WriteManifestFile replaces the file at path with the manifest of outcomes.
func WriteManifestFile(path string, outcomes []normalize.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}
	if err := WriteManifest(f, outcomes); err != nil {
		f.Close()
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return f.Close()
}

// ManifestLog appends manifest entries as outcomes arrive. It is safe for concurrent use.
type ManifestLog struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// OpenManifestLog opens the manifest at path for appending, creating it if needed.
func OpenManifestLog(path string) (*ManifestLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	return &ManifestLog{f: f, enc: json.NewEncoder(f)}, nil
}

// Append writes the entry of o.
func (l *ManifestLog) Append(o normalize.Outcome) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(NewManifestEntry(o)); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *ManifestLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
