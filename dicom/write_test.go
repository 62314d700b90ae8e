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

package dicom

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func TestWriteDataElement(t *testing.T) {
	testCases := []struct {
		name     string
		element  *DataElement
		syntax   Encoding
		expected []byte
	}{
		{
			"unsigned long ExplicitVRLittleEndian",
			&DataElement{0x00020000, ULVR, []uint32{202}, 4},
			explicitVRLittleEndian,
			[]byte{0x02, 0x00, 0x00, 0x00, 'U', 'L', 0x04, 0x00, 0xCA, 0x00, 0x00, 0x00},
		},
		{
			"code string ImplicitVRLittleEndian",
			&DataElement{ModalityTag, CSVR, []string{"CT"}, 2},
			implicitVRLittleEndian,
			[]byte{
				0x08, 0x00, 0x60, 0x00, // Tag
				0x02, 0x00, 0x00, 0x00, // Length
				'C', 'T', // Value
			},
		},
		{
			"odd length text is space padded",
			&DataElement{ManufacturerTag, LOVR, []string{"ABC"}, 0},
			explicitVRLittleEndian,
			[]byte{
				0x08, 0x00, 0x70, 0x00, // Tag
				'L', 'O', // VR
				0x04, 0x00, // Length
				'A', 'B', 'C', ' ', // Value
			},
		},
		{
			"multiple values",
			&DataElement{ManufacturerTag, LOVR, []string{"A", "BC"}, 0},
			explicitVRLittleEndian,
			[]byte{
				0x08, 0x00, 0x70, 0x00, // Tag
				'L', 'O', // VR
				0x04, 0x00, // Length
				'A', '\\', 'B', 'C', // Value
			},
		},
		{
			"odd length uid is null padded",
			&DataElement{SOPClassUIDTag, UIVR, []string{"1.2.3"}, 0},
			explicitVRLittleEndian,
			[]byte{
				0x08, 0x00, 0x16, 0x00, // Tag
				'U', 'I', // VR
				0x06, 0x00, // Length
				'1', '.', '2', '.', '3', 0x00, // Value
			},
		},
		{
			"missing VR is filled in from the dictionary",
			&DataElement{Tag: RowsTag, ValueField: []uint16{512}},
			explicitVRBigEndian,
			[]byte{
				0x00, 0x28, 0x00, 0x10, // Tag
				'U', 'S', // VR
				0x00, 0x02, // Length
				0x02, 0x00, // Value
			},
		},
		{
			"other word ExplicitVRBigEndian is swapped",
			&DataElement{PixelDataTag, OWVR, NewBulkDataBuffer([]byte{0x02, 0x01, 0x04, 0x03}), 4},
			explicitVRBigEndian,
			[]byte{
				0x7F, 0xE0, 0x00, 0x10, // Tag
				'O', 'W', 0x00, 0x00, // VR
				0x00, 0x00, 0x00, 0x04, // Length
				0x01, 0x02, 0x03, 0x04, // Value
			},
		},
		{
			"odd length other byte is null padded",
			&DataElement{PixelDataTag, OBVR, NewBulkDataBuffer([]byte{0x01, 0x02, 0x03}), 3},
			explicitVRLittleEndian,
			[]byte{
				0xE0, 0x7F, 0x10, 0x00, // Tag
				'O', 'B', 0x00, 0x00, // VR
				0x04, 0x00, 0x00, 0x00, // Length
				0x01, 0x02, 0x03, 0x00, // Value
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := writeDataElement(newDcmWriter(&buf), tc.syntax, tc.element); err != nil {
				t.Fatalf("writeDataElement(_, _, _) => %v", err)
			}
			if got := buf.Bytes(); !bytes.Equal(got, tc.expected) {
				t.Fatalf("got % X, want % X", got, tc.expected)
			}
		})
	}
}

func TestWriteDataElement_shortLengthOverflow(t *testing.T) {
	element := &DataElement{ManufacturerTag, LOVR, []string{string(make([]byte, 70000))}, 0}
	var buf bytes.Buffer
	if err := writeDataElement(newDcmWriter(&buf), explicitVRLittleEndian, element); err == nil {
		t.Fatal("writeDataElement(_, _, _) => nil error, want error for value exceeding 16 bit length")
	}
}

func TestCalculateValueLength(t *testing.T) {
	testCases := []struct {
		name     string
		value    interface{}
		expected uint32
	}{
		{"empty", nil, 0},
		{"strings", []string{"A", "BC"}, 4},
		{"odd strings", []string{"A", "B"}, 4},
		{"uint16", []uint16{1, 2, 3}, 6},
		{"float64", []float64{1}, 8},
		{"native bulk data", NewBulkDataBuffer([]byte{1, 2, 3}), 4},
		{"encapsulated bulk data", NewEncapsulatedBuffer(nil, []byte{1, 2}), UndefinedLength},
		{"sequence", &Sequence{}, UndefinedLength},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := calculateValueLength(&DataElement{ValueField: tc.value})
			if err != nil {
				t.Fatalf("calculateValueLength(_) => %v", err)
			}
			if got != tc.expected {
				t.Fatalf("got %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestWriteSequence_roundTrip(t *testing.T) {
	for _, syntax := range []Encoding{explicitVRLittleEndian, implicitVRLittleEndian, explicitVRBigEndian} {
		t.Run(syntax.String(), func(t *testing.T) {
			element := &DataElement{ReferencedSeriesSequenceTag, SQVR, &Sequence{Items: []*DataSet{
				{Elements: map[DataElementTag]*DataElement{
					ModalityTag:          {ModalityTag, CSVR, []string{"MR"}, 2},
					SeriesInstanceUIDTag: {SeriesInstanceUIDTag, UIVR, []string{"1.23"}, 4},
				}},
				{Elements: map[DataElementTag]*DataElement{}},
			}}, UndefinedLength}

			var buf bytes.Buffer
			if err := writeDataElement(newDcmWriter(&buf), syntax, element); err != nil {
				t.Fatalf("writeDataElement(_, _, _) => %v", err)
			}
			got, err := readDataElement(dcmReaderFromBytes(buf.Bytes()), syntax)
			if err != nil {
				t.Fatalf("readDataElement(_, _) => %v", err)
			}
			if !reflect.DeepEqual(got, element) {
				t.Fatalf("got %v, want %v", got, element)
			}
		})
	}
}

// shortWriter accepts at most n bytes in total and then writes nothing more.
type shortWriter struct {
	n int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		p = p[:w.n]
	}
	w.n -= len(p)
	return len(p), nil
}

func TestDcmWriter_errors(t *testing.T) {
	element := &DataElement{ModalityTag, CSVR, []string{"MR"}, 2}

	testCases := []struct {
		name    string
		w       io.Writer
		want    error
		wantMsg string
	}{
		{"short write", &shortWriter{n: 6}, io.ErrShortWrite, "at offset 6"},
		{"failing writer", &errWriter{}, errWrite, "at offset 0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := writeDataElement(newDcmWriter(tc.w), explicitVRLittleEndian, element)
			if !errors.Is(err, tc.want) {
				t.Fatalf("writeDataElement(_, _, _) => %v, want %v", err, tc.want)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("got error %q, want it to contain %q", err, tc.wantMsg)
			}
		})
	}
}

func TestNewDcmWriter_reusesWriter(t *testing.T) {
	var buf bytes.Buffer
	dw := newDcmWriter(&buf)
	if got := newDcmWriter(dw); got != dw {
		t.Fatal("newDcmWriter(*dcmWriter) wrapped the writer again")
	}
}

var errWrite = errors.New("disk full")

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) {
	return 0, errWrite
}
