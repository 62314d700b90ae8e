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

package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/medbrief/dicom-normalizer/dicom"
)

// RLE Lossless frames start with a header of 16 little endian uint32s: the number of segments
// followed by the offset of each segment.
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#chapter_G
const (
	rleHeaderSize  = 64
	rleMaxSegments = 15

	// A two byte replicate run expands to at most 128 bytes.
	rleMaxExpansion = 64
)

// RLEDecoder decodes the RLE Lossless transfer syntax.
type RLEDecoder struct{}

// Syntaxes implements Decoder.
func (RLEDecoder) Syntaxes() []string {
	return []string{dicom.RLELosslessUID}
}

// Sniff implements Decoder.
func (RLEDecoder) Sniff(fragment []byte) (string, bool) {
	if _, err := parseRLEHeader(fragment); err != nil {
		return "", false
	}
	return dicom.RLELosslessUID, true
}

// Decode implements Decoder.
func (RLEDecoder) Decode(frame []byte, info FrameInfo) (*Frame, error) {
	offsets, err := parseRLEHeader(frame)
	if err != nil {
		return nil, err
	}

	bps := info.BytesPerSample()
	if want := info.SamplesPerPixel * bps; len(offsets) != want {
		return nil, fmt.Errorf("rle frame has %d segments, want %d", len(offsets), want)
	}

	numPixels := info.Rows * info.Columns
	if numPixels*len(offsets) > rleMaxExpansion*(len(frame)-rleHeaderSize) {
		return nil, fmt.Errorf("rle frame of %d bytes cannot hold %dx%d pixels", len(frame), info.Columns, info.Rows)
	}
	out := make([]byte, numPixels*info.SamplesPerPixel*bps)
	for i, start := range offsets {
		end := uint32(len(frame))
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		segment, err := decodePackBits(frame[start:end], numPixels)
		if err != nil {
			return nil, fmt.Errorf("decoding rle segment %d: %w", i, err)
		}

		// segments hold one byte of one sample for every pixel, the most significant byte of a
		// sample first
		sample := i / bps
		byteIndex := bps - 1 - i%bps
		for p, b := range segment {
			out[(p*info.SamplesPerPixel+sample)*bps+byteIndex] = b
		}
	}

	return &Frame{Data: out, PhotometricInterpretation: info.PhotometricInterpretation}, nil
}

func parseRLEHeader(frame []byte) ([]uint32, error) {
	if len(frame) < rleHeaderSize {
		return nil, fmt.Errorf("rle frame of %d bytes is shorter than its header", len(frame))
	}
	n := binary.LittleEndian.Uint32(frame)
	if n == 0 || n > rleMaxSegments {
		return nil, fmt.Errorf("invalid number of rle segments %d", n)
	}

	offsets := make([]uint32, n)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(frame[4+4*i:])
	}
	if offsets[0] != rleHeaderSize {
		return nil, fmt.Errorf("first rle segment starts at %d, want %d", offsets[0], rleHeaderSize)
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] <= offsets[i-1] {
			return nil, fmt.Errorf("rle segment offsets are not increasing")
		}
	}
	if offsets[n-1] >= uint32(len(frame)) {
		return nil, fmt.Errorf("rle segment offset %d beyond end of frame", offsets[n-1])
	}
	for i := int(n); i < rleMaxSegments; i++ {
		if binary.LittleEndian.Uint32(frame[4+4*i:]) != 0 {
			return nil, fmt.Errorf("unused rle segment offset %d is not zero", i)
		}
	}
	return offsets, nil
}

// decodePackBits decodes a PackBits segment into exactly n bytes. Trailing bytes of the segment,
// such as the padding to an even length, are ignored.
func decodePackBits(data []byte, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for i := 0; i < len(data) && len(out) < n; {
		header := int8(data[i])
		i++
		switch {
		case header >= 0:
			count := int(header) + 1
			if i+count > len(data) {
				return nil, fmt.Errorf("literal run of %d bytes exceeds segment", count)
			}
			out = append(out, data[i:i+count]...)
			i += count
		case header != -128:
			if i >= len(data) {
				return nil, fmt.Errorf("replicate run without a value")
			}
			count := 1 - int(header)
			for j := 0; j < count; j++ {
				out = append(out, data[i])
			}
			i++
		}
	}
	if len(out) < n {
		return nil, fmt.Errorf("segment decoded to %d bytes, want %d", len(out), n)
	}
	return out[:n], nil
}
