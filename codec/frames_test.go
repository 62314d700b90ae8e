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
	"reflect"
	"testing"

	"github.com/medbrief/dicom-normalizer/dicom"
)

func offsetTable(offsets ...uint32) []byte {
	b := make([]byte, 0, 4*len(offsets))
	for _, o := range offsets {
		b = append(b, byte(o), byte(o>>8), byte(o>>16), byte(o>>24))
	}
	return b
}

func TestSplitFrames(t *testing.T) {
	a := []byte{1, 2}
	b := []byte{3, 4, 5, 6}
	c := []byte{7, 8}

	testCases := []struct {
		name      string
		pixels    *dicom.BulkDataBuffer
		numFrames int
		want      [][]byte
	}{
		{
			name:      "single frame joins fragments",
			pixels:    dicom.NewEncapsulatedBuffer(nil, a, b, c),
			numFrames: 1,
			want:      [][]byte{{1, 2, 3, 4, 5, 6, 7, 8}},
		},
		{
			name:      "one fragment per frame",
			pixels:    dicom.NewEncapsulatedBuffer(nil, a, b, c),
			numFrames: 3,
			want:      [][]byte{a, b, c},
		},
		{
			name:      "offset table groups fragments",
			pixels:    dicom.NewEncapsulatedBuffer(offsetTable(0, 22), a, b, c),
			numFrames: 2,
			want:      [][]byte{{1, 2, 3, 4, 5, 6}, {7, 8}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := splitFrames(tc.pixels, tc.numFrames)
			if err != nil {
				t.Fatalf("splitFrames(_, %d) => %v", tc.numFrames, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSplitFrames_errors(t *testing.T) {
	a := []byte{1, 2}
	b := []byte{3, 4}

	testCases := []struct {
		name      string
		pixels    *dicom.BulkDataBuffer
		numFrames int
	}{
		{"no fragments", dicom.NewEncapsulatedBuffer(nil), 1},
		{"too few fragments", dicom.NewEncapsulatedBuffer(nil, a), 2},
		{"offset table size", dicom.NewEncapsulatedBuffer(offsetTable(0), a, b), 2},
		{"offset between fragments", dicom.NewEncapsulatedBuffer(offsetTable(0, 5), a, b), 2},
		{"offset past the end", dicom.NewEncapsulatedBuffer(offsetTable(0, 100), a, b), 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := splitFrames(tc.pixels, tc.numFrames); err == nil {
				t.Fatalf("splitFrames(_, %d) => nil error, want error", tc.numFrames)
			}
		})
	}
}

func TestNumberOfFrames(t *testing.T) {
	testCases := []struct {
		value   interface{}
		want    int
		wantErr bool
	}{
		{nil, 1, false},
		{[]string{"3"}, 3, false},
		{[]string{" 2 "}, 2, false},
		{[]string{"0"}, 0, true},
		{[]string{"x"}, 0, true},
	}

	for _, tc := range testCases {
		body := dicom.NewDataSet(nil)
		if tc.value != nil {
			body = dicom.NewDataSet(map[dicom.DataElementTag]interface{}{dicom.NumberOfFramesTag: tc.value})
		}
		got, err := numberOfFrames(body)
		if (err != nil) != tc.wantErr {
			t.Fatalf("numberOfFrames(%v) => error %v, want error %v", tc.value, err, tc.wantErr)
		}
		if got != tc.want {
			t.Fatalf("numberOfFrames(%v) = %d, want %d", tc.value, got, tc.want)
		}
	}
}
