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
	"fmt"
	"io"
)

// BulkDataBuffer holds the bytes of a bulk data element (OB, OW, UN) buffered into memory.
//
// Native (uncompressed) values consist of a single fragment. Pixel Data in the encapsulated
// format as described in http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4
// consists of the Basic Offset Table (possibly empty) followed by one fragment per item.
//
// OW values are always held in little endian byte order regardless of the encoding they were
// read from or will be written to.
type BulkDataBuffer struct {
	fragments    [][]byte
	encapsulated bool
}

// NewBulkDataBuffer returns a native BulkDataBuffer holding b.
func NewBulkDataBuffer(b []byte) *BulkDataBuffer {
	return &BulkDataBuffer{fragments: [][]byte{b}}
}

// NewEncapsulatedBuffer returns a BulkDataBuffer in the encapsulated format. The first fragment
// is the Basic Offset Table and may be empty.
func NewEncapsulatedBuffer(offsetTable []byte, fragments ...[]byte) *BulkDataBuffer {
	all := make([][]byte, 0, len(fragments)+1)
	all = append(all, offsetTable)
	all = append(all, fragments...)
	return &BulkDataBuffer{fragments: all, encapsulated: true}
}

// Encapsulated reports whether the buffer holds pixel data in the encapsulated format.
func (b *BulkDataBuffer) Encapsulated() bool {
	return b.encapsulated
}

// Data returns the fragments of the buffer. For encapsulated data the first fragment is the Basic
// Offset Table.
func (b *BulkDataBuffer) Data() [][]byte {
	return b.fragments
}

// Fragments returns the data fragments of encapsulated pixel data, excluding the Basic Offset
// Table. For native data it returns the single value fragment.
func (b *BulkDataBuffer) Fragments() [][]byte {
	if b.encapsulated && len(b.fragments) > 0 {
		return b.fragments[1:]
	}
	return b.fragments
}

// OffsetTable returns the decoded Basic Offset Table of encapsulated pixel data. It is empty when
// the table is empty or the data is native.
func (b *BulkDataBuffer) OffsetTable() []uint32 {
	if !b.encapsulated || len(b.fragments) == 0 {
		return nil
	}
	table := b.fragments[0]
	offsets := make([]uint32, len(table)/4)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(table[i*4:])
	}
	return offsets
}

// Bytes returns the concatenation of all fragments of a native buffer.
func (b *BulkDataBuffer) Bytes() []byte {
	if len(b.fragments) == 1 {
		return b.fragments[0]
	}
	return bytes.Join(b.fragments, nil)
}

func (b *BulkDataBuffer) String() string {
	if b.encapsulated {
		return fmt.Sprintf("<encapsulated: %d fragments>", len(b.Fragments()))
	}
	return fmt.Sprintf("<%d bytes>", len(b.Bytes()))
}

func (b *BulkDataBuffer) length() int64 {
	n := int64(0)
	for _, fragment := range b.fragments {
		n += int64(len(fragment))
	}
	return n
}

func readEncapsulatedFormat(dr *dcmReader) (*BulkDataBuffer, error) {
	buf := &BulkDataBuffer{encapsulated: true}
	for {
		tag, err := processItemTag(dr, binary.LittleEndian)
		if err != nil {
			return nil, fmt.Errorf("reading tag in encapsulated format fragment: %v", err)
		}

		length, err := dr.UInt32(binary.LittleEndian)
		if err != nil {
			return nil, fmt.Errorf("reading fragment length: %v", err)
		}
		if tag == SequenceDelimitationItemTag {
			return buf, nil
		}
		if length == UndefinedLength {
			return nil, fmt.Errorf("expected fragment to be of explicit length")
		}

		fragment, err := dr.Bytes(int64(length))
		if err != nil {
			return nil, fmt.Errorf("reading fragment: %v", err)
		}
		buf.fragments = append(buf.fragments, fragment)
	}
}

// writeEncapsulatedFormat writes the fragments in the encapsulated format. The first fragment is
// assumed to be the basic offset table.
func writeEncapsulatedFormat(w io.Writer, order binary.ByteOrder, fragments [][]byte) error {
	dw := newDcmWriter(w)

	if len(fragments) == 0 {
		// an empty basic offset table is mandatory
		fragments = [][]byte{{}}
	}
	for _, fragment := range fragments {
		if err := dw.Tag(order, ItemTag); err != nil {
			return fmt.Errorf("writing fragment tag: %v", err)
		}
		length := len(fragment)
		if length%2 != 0 {
			length++
		}
		if err := dw.UInt32(order, uint32(length)); err != nil {
			return fmt.Errorf("writing fragment length: %v", err)
		}
		if err := dw.Bytes(fragment); err != nil {
			return fmt.Errorf("writing fragment: %v", err)
		}
		if length != len(fragment) {
			if err := dw.Bytes([]byte{0}); err != nil {
				return fmt.Errorf("writing fragment padding: %v", err)
			}
		}
	}

	return dw.Delimiter(order, SequenceDelimitationItemTag)
}

// swapBytes reverses the byte order of every size-byte word in b in place.
func swapBytes(b []byte, size int) {
	for i := 0; i+size <= len(b); i += size {
		for j := 0; j < size/2; j++ {
			b[i+j], b[i+size-1-j] = b[i+size-1-j], b[i+j]
		}
	}
}
