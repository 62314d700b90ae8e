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

package normalize

import (
	"context"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"

	"github.com/medbrief/dicom-normalizer/dicom"
)

// Options control the normalization of a single file.
type Options struct {
	// StripPrivate removes private elements from the output.
	StripPrivate bool

	// Vendor, when set, skips files that do not look like they come from it.
	Vendor *Vendor

	// StrictVerify fails files whose output does not read back with the intended transfer
	// syntax. By default such files are OK with an empty output transfer syntax.
	StrictVerify bool

	// DecompressTimeout bounds the time spent decoding pixel data. Zero means no limit.
	DecompressTimeout time.Duration
}

// Normalizer normalizes files one at a time. It is safe for concurrent use when its Decompressor
// is.
type Normalizer struct {
	decompressor Decompressor
	meta         *MetaBuilder
	log          zerolog.Logger
}

// NewNormalizer returns a Normalizer decoding pixel data with d and rebuilding file meta groups
// with meta.
func NewNormalizer(d Decompressor, meta *MetaBuilder, log zerolog.Logger) *Normalizer {
	return &Normalizer{decompressor: d, meta: meta, log: log}
}

// NormalizeFile reads src, normalizes it and writes the result to dst. Failures are reported in
// the returned Outcome; they never panic or abort the caller.
func (n *Normalizer) NormalizeFile(ctx context.Context, src, dst string, opts Options) Outcome {
	start := time.Now()
	o := n.normalize(ctx, src, dst, opts)
	o.Duration = time.Since(start)
	return o
}

func (n *Normalizer) normalize(ctx context.Context, src, dst string, opts Options) Outcome {
	log := n.log.With().Str("input", src).Logger()
	o := Outcome{Input: src, Output: dst, Status: StatusFail}

	in, err := readFile(src)
	if err != nil {
		o.Err = &ReadFailure{Path: src, Err: err}
		log.Debug().Err(err).Msg("read failed")
		return o
	}

	if opts.Vendor != nil && !LooksLike(*opts.Vendor, in) {
		log.Debug().Str("vendor", opts.Vendor.Name).Msg("vendor mismatch")
		o.Status = StatusSkip
		return o
	}

	class := Classify(in)
	o.Part10In = FlagOf(class.SelfDescribing)
	if class.Declared != nil {
		o.TransferSyntaxIn = class.Declared.UID
	}
	o.Manufacturer, _ = in.Body.DecodedString(dicom.ManufacturerTag)
	o.Modality, _ = in.Body.FirstString(dicom.ModalityTag)
	o.SOPClass, _ = in.Body.FirstString(dicom.SOPClassUIDTag)
	log.Debug().Bool("self_describing", class.SelfDescribing).Str("ts_in", o.TransferSyntaxIn).Msg("classified")

	dctx := ctx
	if opts.DecompressTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, opts.DecompressTimeout)
		defer cancel()
	}
	decompressed, err := decompress(dctx, n.decompressor, in, class.Declared)
	if err != nil {
		log.Debug().Err(err).Msg("pixel data left as is")
	}
	o.Decompressed = FlagOf(decompressed)

	target := SelectTargetSyntax(class.Declared, decompressed)
	meta := n.meta.Build(in.Body, target)
	out := BuildOutput(in, meta, target, opts.StripPrivate)
	log.Debug().Str("target", target.String()).Str("sop_instance", meta.MediaStorageSOPInstanceUID).Msg("built output")

	digest, err := writeFile(dst, out)
	if err != nil {
		o.Err = &WriteFailure{Path: dst, Err: err}
		log.Debug().Err(err).Msg("write failed")
		return o
	}
	o.Digest = digest

	got, err := verify(dst, target)
	if err != nil {
		log.Warn().Err(err).Msg("verification failed")
		if opts.StrictVerify {
			o.Err = err
			return o
		}
	}
	o.TransferSyntaxOut = got
	o.Status = StatusOK
	return o
}

func readFile(path string) (*dicom.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dicom.ParseFile(f, dicom.Permissive())
}

// writeFile writes f to a temporary file next to path and renames it into place. It returns the
// BLAKE3 digest of the written bytes.
func writeFile(path string, f *dicom.File) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	h := blake3.New()
	if err := dicom.WriteFile(io.MultiWriter(tmp, h), f); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// verify reads back the file meta group of path and returns its transfer syntax.
func verify(path string, target TransferSyntax) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &VerifyFailure{Path: path, Want: target.UID, Err: err}
	}
	defer f.Close()

	written, err := dicom.ParseFile(f, dicom.StopBeforePixels())
	if err != nil {
		return "", &VerifyFailure{Path: path, Want: target.UID, Err: err}
	}
	got, _ := written.TransferSyntaxUID()
	if got != target.UID {
		return "", &VerifyFailure{Path: path, Want: target.UID, Got: got}
	}
	return got, nil
}
