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
	"encoding/binary"
	"reflect"
	"testing"
)

func TestWriteEncapsulatedFormat(t *testing.T) {
	var buf bytes.Buffer
	fragments := [][]byte{{}, {0xAA}, {0xBB, 0xCC}}
	if err := writeEncapsulatedFormat(&buf, binary.LittleEndian, fragments); err != nil {
		t.Fatalf("writeEncapsulatedFormat(_, _, _) => %v", err)
	}

	want := []byte{
		0xFE, 0xFF, 0x00, 0xE0, 0x00, 0x00, 0x00, 0x00, // Basic Offset Table
		0xFE, 0xFF, 0x00, 0xE0, 0x02, 0x00, 0x00, 0x00, 0xAA, 0x00, // Fragment, padded
		0xFE, 0xFF, 0x00, 0xE0, 0x02, 0x00, 0x00, 0x00, 0xBB, 0xCC, // Fragment
		0xFE, 0xFF, 0xDD, 0xE0, 0x00, 0x00, 0x00, 0x00, // Sequence Delimitation Item
	}
	if got := buf.Bytes(); !bytes.Equal(got, want) {
		t.Fatalf("got % X, want % X", got, want)
	}
}

func TestEncapsulatedFormat_roundTrip(t *testing.T) {
	offsets := []byte{0x00, 0x00, 0x00, 0x00, 0x0A, 0x00, 0x00, 0x00}
	buf := NewEncapsulatedBuffer(offsets, []byte{0x01, 0x02}, []byte{0x03, 0x04})

	var b bytes.Buffer
	if err := writeEncapsulatedFormat(&b, binary.LittleEndian, buf.Data()); err != nil {
		t.Fatalf("writeEncapsulatedFormat(_, _, _) => %v", err)
	}
	got, err := readEncapsulatedFormat(dcmReaderFromBytes(b.Bytes()))
	if err != nil {
		t.Fatalf("readEncapsulatedFormat(_) => %v", err)
	}
	if !reflect.DeepEqual(got, buf) {
		t.Fatalf("got %v, want %v", got, buf)
	}
	if want := []uint32{0, 10}; !reflect.DeepEqual(got.OffsetTable(), want) {
		t.Fatalf("OffsetTable() => %v, want %v", got.OffsetTable(), want)
	}
}

func TestReadEncapsulatedFormat_invalidItem(t *testing.T) {
	data := []byte{
		0x08, 0x00, 0x60, 0x00, 0x00, 0x00, 0x00, 0x00, // not an item tag
	}
	if _, err := readEncapsulatedFormat(dcmReaderFromBytes(data)); err == nil {
		t.Fatal("readEncapsulatedFormat(_) => nil error, want error")
	}
}

func TestBulkDataBuffer_native(t *testing.T) {
	buf := NewBulkDataBuffer([]byte{1, 2, 3})
	if buf.Encapsulated() {
		t.Fatal("Encapsulated() => true, want false")
	}
	if got := buf.OffsetTable(); got != nil {
		t.Fatalf("OffsetTable() => %v, want nil", got)
	}
	if got, want := buf.Bytes(), []byte{1, 2, 3}; !bytes.Equal(got, want) {
		t.Fatalf("Bytes() => %v, want %v", got, want)
	}
}

func TestSwapBytes(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5}
	swapBytes(b, 2)
	if want := []byte{2, 1, 4, 3, 5}; !bytes.Equal(b, want) {
		t.Fatalf("got %v, want %v", b, want)
	}
}
