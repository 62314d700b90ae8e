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
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/medbrief/dicom-normalizer/dicom"
)

func imageBody(rows, columns, samples, bitsAllocated int, photometric string, pixels interface{}) *dicom.DataSet {
	return dicom.NewDataSet(map[dicom.DataElementTag]interface{}{
		dicom.RowsTag:                      []uint16{uint16(rows)},
		dicom.ColumnsTag:                   []uint16{uint16(columns)},
		dicom.SamplesPerPixelTag:           []uint16{uint16(samples)},
		dicom.BitsAllocatedTag:             []uint16{uint16(bitsAllocated)},
		dicom.PhotometricInterpretationTag: []string{photometric},
		dicom.PixelDataTag:                 pixels,
	})
}

func elementsByTag(elements []*dicom.DataElement) map[dicom.DataElementTag]*dicom.DataElement {
	m := map[dicom.DataElementTag]*dicom.DataElement{}
	for _, e := range elements {
		m[e.Tag] = e
	}
	return m
}

func TestRegistry_DecompressRLE(t *testing.T) {
	pixels := dicom.NewEncapsulatedBuffer(nil, encodeRLEFrame([]byte{1, 2, 3, 4}))
	body := imageBody(2, 2, 1, 8, "MONOCHROME2", pixels)

	for _, uid := range []string{dicom.RLELosslessUID, ""} {
		t.Run("syntax "+uid, func(t *testing.T) {
			elements, err := DefaultRegistry().Decompress(context.Background(), body, uid)
			if err != nil {
				t.Fatalf("Decompress(_, _, %q) => %v", uid, err)
			}

			want := []*dicom.DataElement{
				{Tag: dicom.PixelDataTag, VR: dicom.OBVR, ValueField: dicom.NewBulkDataBuffer([]byte{1, 2, 3, 4}), ValueLength: 4},
			}
			if !reflect.DeepEqual(elements, want) {
				t.Fatalf("got %v, want %v", elements, want)
			}
		})
	}

	if got, _ := body.Get(dicom.PixelDataTag); got.ValueField != pixels {
		t.Fatal("Decompress modified the data set")
	}
}

func TestRegistry_DecompressSideEffects(t *testing.T) {
	frame := colorJPEG(t, 8, 8, colorRed)
	body := imageBody(8, 8, 3, 8, "YBR_FULL_422", dicom.NewEncapsulatedBuffer(nil, frame))

	elements, err := DefaultRegistry().Decompress(context.Background(), body, dicom.JPEGBaselineUID)
	if err != nil {
		t.Fatalf("Decompress(_, _, _) => %v", err)
	}
	byTag := elementsByTag(elements)

	pixel, ok := byTag[dicom.PixelDataTag]
	if !ok {
		t.Fatal("missing pixel data")
	}
	if buf := pixel.ValueField.(*dicom.BulkDataBuffer); buf.Encapsulated() || len(buf.Bytes()) != 8*8*3 {
		t.Fatalf("got pixel data %v, want %d native bytes", buf, 8*8*3)
	}
	if got, _ := byTag[dicom.PhotometricInterpretationTag].StringValue(); got != "RGB" {
		t.Fatalf("got photometric %q, want RGB", got)
	}
	if got := byTag[dicom.PlanarConfigurationTag].ValueField; !reflect.DeepEqual(got, []uint16{0}) {
		t.Fatalf("got planar configuration %v, want [0]", got)
	}
	if got, _ := byTag[dicom.LossyImageCompressionTag].StringValue(); got != "01" {
		t.Fatalf("got lossy image compression %q, want 01", got)
	}
}

func TestRegistry_DecompressKeepsLossyFlag(t *testing.T) {
	body := imageBody(8, 8, 1, 8, "MONOCHROME2", dicom.NewEncapsulatedBuffer(nil, grayJPEG(t, 8, 8, 7)))
	body.Add(&dicom.DataElement{Tag: dicom.LossyImageCompressionTag, VR: dicom.CSVR, ValueField: []string{"00"}, ValueLength: 2})

	elements, err := DefaultRegistry().Decompress(context.Background(), body, dicom.JPEGBaselineUID)
	if err != nil {
		t.Fatalf("Decompress(_, _, _) => %v", err)
	}
	if _, ok := elementsByTag(elements)[dicom.LossyImageCompressionTag]; ok {
		t.Fatal("existing lossy image compression was replaced")
	}
}

func TestRegistry_DecompressMultiFrame(t *testing.T) {
	frame1 := encodeRLEFrame([]byte{1, 2})
	frame2 := encodeRLEFrame([]byte{3, 4})
	offsets := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	offsets[4] = byte(8 + len(frame1))

	testCases := []struct {
		name   string
		pixels *dicom.BulkDataBuffer
	}{
		{"one fragment per frame", dicom.NewEncapsulatedBuffer(nil, frame1, frame2)},
		{"basic offset table", dicom.NewEncapsulatedBuffer(offsets, frame1, frame2)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := imageBody(1, 2, 1, 8, "MONOCHROME2", tc.pixels)
			body.Add(&dicom.DataElement{Tag: dicom.NumberOfFramesTag, VR: dicom.ISVR, ValueField: []string{"2"}, ValueLength: 2})

			elements, err := DefaultRegistry().Decompress(context.Background(), body, dicom.RLELosslessUID)
			if err != nil {
				t.Fatalf("Decompress(_, _, _) => %v", err)
			}
			got := elements[0].ValueField.(*dicom.BulkDataBuffer).Bytes()
			if want := []byte{1, 2, 3, 4}; !bytes.Equal(got, want) {
				t.Fatalf("got %v, want %v", got, want)
			}
		})
	}
}

func TestRegistry_DecompressErrors(t *testing.T) {
	rle := dicom.NewEncapsulatedBuffer(nil, encodeRLEFrame([]byte{1, 2, 3, 4}))
	j2k := dicom.NewEncapsulatedBuffer(nil, []byte{0xFF, 0x4F, 0xFF, 0x51, 0x00, 0x2F})

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	testCases := []struct {
		name string
		ctx  context.Context
		body *dicom.DataSet
		uid  string
		want error
	}{
		{"no pixel data", context.Background(), dicom.NewDataSet(nil), dicom.RLELosslessUID, ErrNoPixelData},
		{"native pixel data", context.Background(), imageBody(2, 2, 1, 8, "MONOCHROME2", dicom.NewBulkDataBuffer([]byte{1, 2, 3, 4})), "", ErrNotEncapsulated},
		{"unsupported syntax", context.Background(), imageBody(2, 2, 1, 8, "MONOCHROME2", rle), dicom.JPEG2000LosslessUID, ErrUnsupported},
		{"sniffed jpeg 2000", context.Background(), imageBody(2, 2, 1, 8, "MONOCHROME2", j2k), "", ErrUnsupported},
		{"canceled", canceled, imageBody(2, 2, 1, 8, "MONOCHROME2", rle), dicom.RLELosslessUID, context.Canceled},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DefaultRegistry().Decompress(tc.ctx, tc.body, tc.uid)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Decompress(_, _, %q) => %v, want %v", tc.uid, err, tc.want)
			}
		})
	}
}

func TestRegistry_DecompressTooLarge(t *testing.T) {
	rle := dicom.NewEncapsulatedBuffer(nil, encodeRLEFrame([]byte{1, 2, 3, 4}))
	jpg := dicom.NewEncapsulatedBuffer(nil, grayJPEG(t, 8, 8, 7))

	testCases := []struct {
		name   string
		body   *dicom.DataSet
		uid    string
		frames string
	}{
		{"huge rle frame", imageBody(65535, 65535, 3, 32, "RGB", rle), dicom.RLELosslessUID, ""},
		{"huge jpeg frame", imageBody(65535, 65535, 3, 32, "RGB", jpg), dicom.JPEGBaselineUID, ""},
		{"huge sniffed frame", imageBody(65535, 65535, 3, 32, "RGB", jpg), "", ""},
		{"too many frames", imageBody(512, 512, 1, 16, "MONOCHROME2", rle), dicom.RLELosslessUID, "999999999"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.frames != "" {
				tc.body.Add(&dicom.DataElement{Tag: dicom.NumberOfFramesTag, VR: dicom.ISVR, ValueField: []string{tc.frames}, ValueLength: uint32(len(tc.frames))})
			}
			_, err := DefaultRegistry().Decompress(context.Background(), tc.body, tc.uid)
			if !errors.Is(err, ErrUnsupported) {
				t.Fatalf("Decompress(_, _, %q) => %v, want %v", tc.uid, err, ErrUnsupported)
			}
		})
	}
}

func TestRegistry_DecompressSizeMismatch(t *testing.T) {
	body := imageBody(4, 4, 1, 8, "MONOCHROME2", dicom.NewEncapsulatedBuffer(nil, encodeRLEFrame([]byte{1, 2, 3, 4})))
	if _, err := DefaultRegistry().Decompress(context.Background(), body, dicom.RLELosslessUID); err == nil {
		t.Fatal("Decompress(_, _, _) => nil error, want error for short frame")
	}
}

func TestRegistry_Sniff(t *testing.T) {
	tests := []struct {
		name      string
		pixels    *dicom.BulkDataBuffer
		wantUID   string
		wantSniff bool
	}{
		{
			name:      "rle",
			pixels:    dicom.NewEncapsulatedBuffer(nil, encodeRLEFrame([]byte{1, 2, 3, 4})),
			wantUID:   dicom.RLELosslessUID,
			wantSniff: true,
		},
		{
			name:      "jpeg after an empty fragment",
			pixels:    dicom.NewEncapsulatedBuffer(nil, []byte{}, grayJPEG(t, 8, 8, 100)),
			wantUID:   dicom.JPEGBaselineUID,
			wantSniff: true,
		},
		{
			name:   "jpeg 2000",
			pixels: dicom.NewEncapsulatedBuffer(nil, []byte{0xFF, 0x4F, 0xFF, 0x51, 0, 0}),
		},
		{
			name:   "no fragments",
			pixels: dicom.NewEncapsulatedBuffer(nil),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uid, ok := DefaultRegistry().Sniff(tc.pixels)
			if uid != tc.wantUID || ok != tc.wantSniff {
				t.Fatalf("Sniff: got %q, %v, want %q, %v", uid, ok, tc.wantUID, tc.wantSniff)
			}
		})
	}
}
