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
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/medbrief/dicom-normalizer/dicom"
)

func frameInfo(body *dicom.DataSet) (FrameInfo, error) {
	info := FrameInfo{
		SamplesPerPixel:           usValue(body, dicom.SamplesPerPixelTag, 1),
		BitsAllocated:             usValue(body, dicom.BitsAllocatedTag, 8),
		PixelRepresentation:       usValue(body, dicom.PixelRepresentationTag, 0),
		Rows:                      usValue(body, dicom.RowsTag, 0),
		Columns:                   usValue(body, dicom.ColumnsTag, 0),
		PhotometricInterpretation: "MONOCHROME2",
	}
	if p, ok := body.FirstString(dicom.PhotometricInterpretationTag); ok && p != "" {
		info.PhotometricInterpretation = p
	}

	if info.Rows == 0 || info.Columns == 0 {
		return info, fmt.Errorf("image dimensions %dx%d are missing or zero", info.Columns, info.Rows)
	}
	if info.SamplesPerPixel != 1 && info.SamplesPerPixel != 3 {
		return info, fmt.Errorf("unsupported samples per pixel %d", info.SamplesPerPixel)
	}
	switch info.BitsAllocated {
	case 8, 16, 32:
	default:
		return info, fmt.Errorf("unsupported bits allocated %d", info.BitsAllocated)
	}
	return info, nil
}

func usValue(body *dicom.DataSet, tag dicom.DataElementTag, def int) int {
	element, ok := body.Get(tag)
	if !ok {
		return def
	}
	switch v := element.ValueField.(type) {
	case []uint16:
		if len(v) > 0 {
			return int(v[0])
		}
	case []int16:
		if len(v) > 0 {
			return int(v[0])
		}
	case []string:
		// implicit data sets of unknown dictionaries sometimes carry these as text
		if len(v) > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(v[0])); err == nil {
				return n
			}
		}
	}
	return def
}

func numberOfFrames(body *dicom.DataSet) (int, error) {
	s, ok := body.FirstString(dicom.NumberOfFramesTag)
	if !ok || strings.TrimSpace(s) == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parsing number of frames %q: %w", s, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid number of frames %d", n)
	}
	return n, nil
}

// splitFrames groups the fragments of encapsulated pixel data into frames as described in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4
func splitFrames(pixels *dicom.BulkDataBuffer, numFrames int) ([][]byte, error) {
	fragments := pixels.Fragments()
	if len(fragments) == 0 {
		return nil, fmt.Errorf("encapsulated pixel data has no fragments")
	}

	if numFrames == 1 {
		return [][]byte{bytes.Join(fragments, nil)}, nil
	}

	if offsets := pixels.OffsetTable(); len(offsets) > 0 {
		return splitByOffsetTable(fragments, offsets, numFrames)
	}

	if len(fragments) == numFrames {
		return fragments, nil
	}
	return nil, fmt.Errorf("cannot assign %d fragments to %d frames without a basic offset table", len(fragments), numFrames)
}

// splitByOffsetTable uses the Basic Offset Table, whose entries are the byte offsets of the first
// fragment of every frame measured from the first item tag following the table.
func splitByOffsetTable(fragments [][]byte, offsets []uint32, numFrames int) ([][]byte, error) {
	if len(offsets) != numFrames {
		return nil, fmt.Errorf("basic offset table has %d entries for %d frames", len(offsets), numFrames)
	}

	frames := make([][]byte, 0, numFrames)
	position := uint32(0)
	next := 0
	var current []byte
	for _, fragment := range fragments {
		if next < len(offsets) && position == offsets[next] {
			if next > 0 {
				frames = append(frames, current)
			}
			current = nil
			next++
		} else if next == 0 || (next < len(offsets) && position > offsets[next]) {
			return nil, fmt.Errorf("basic offset table entry %d does not point at a fragment", next)
		}
		current = append(current, fragment...)
		position += 8 /*item tag and length*/ + uint32(len(fragment))
	}
	if next != len(offsets) {
		return nil, fmt.Errorf("basic offset table entry %d does not point at a fragment", next)
	}
	return append(frames, current), nil
}
