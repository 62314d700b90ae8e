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
	"fmt"

	"github.com/medbrief/dicom-normalizer/dicom"
)

// Decompressor decodes encapsulated pixel data. syntaxUID is empty when the transfer syntax is
// not known and the decoder has to be chosen from the content. body must not be modified; the
// returned elements replace their counterparts in body. *codec.Registry implements Decompressor.
type Decompressor interface {
	Decompress(ctx context.Context, body *dicom.DataSet, syntaxUID string) ([]*dicom.DataElement, error)
}

// AttemptDecompress decompresses the pixel data of f in place when it is worth trying: when the
// declared transfer syntax is compressed, or when no syntax is declared at all. It reports whether
// the pixel data is now native. Codec failures are absorbed.
func AttemptDecompress(ctx context.Context, d Decompressor, f *dicom.File, declared *TransferSyntax) bool {
	ok, _ := decompress(ctx, d, f, declared)
	return ok
}

// decompress is AttemptDecompress returning the absorbed *CodecFailure.
func decompress(ctx context.Context, d Decompressor, f *dicom.File, declared *TransferSyntax) (bool, error) {
	if _, ok := f.Body.Get(dicom.PixelDataTag); !ok {
		return false, nil
	}

	var syntaxUID string
	switch {
	case declared == nil:
		// optimistic: the decoder is picked from the content
	case declared.Compressed():
		syntaxUID = declared.UID
	default:
		return false, nil
	}

	elements, err := runDecompressor(ctx, d, f.Body, syntaxUID)
	if err != nil {
		return false, &CodecFailure{Syntax: syntaxUID, Err: err}
	}
	for _, element := range elements {
		f.Body.Add(element)
	}
	return true, nil
}

// runDecompressor returns as soon as ctx is done even if d does not honour ctx. A decoder left
// running only reads body; a *codec.Registry stops before its next frame.
func runDecompressor(ctx context.Context, d Decompressor, body *dicom.DataSet, syntaxUID string) ([]*dicom.DataElement, error) {
	type result struct {
		elements []*dicom.DataElement
		err      error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("decoder panic: %v", r)}
			}
		}()
		elements, err := d.Decompress(ctx, body, syntaxUID)
		done <- result{elements, err}
	}()

	select {
	case r := <-done:
		return r.elements, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
