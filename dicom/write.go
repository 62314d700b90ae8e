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
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

func writeDataElement(dw *dcmWriter, syntax Encoding, element *DataElement) error {
	element, err := processedElement(element)
	if err != nil {
		return fmt.Errorf("processing element %v: %v", element.Tag, err)
	}

	if err := dw.Tag(syntax.ByteOrder, element.Tag); err != nil {
		return fmt.Errorf("writing tag: %w", err)
	}
	if err := writeVR(dw, syntax, element.VR); err != nil {
		return fmt.Errorf("writing VR: %w", err)
	}
	if err := writeValueLength(dw, syntax, element.VR, element.ValueLength); err != nil {
		return fmt.Errorf("writing length of %v: %w", element.Tag, err)
	}
	if err := writeValue(dw, syntax, element.VR, element.ValueField); err != nil {
		return fmt.Errorf("writing value of %v: %w", element.Tag, err)
	}

	return nil
}

func processedElement(element *DataElement) (*DataElement, error) {
	vr := element.VR
	if element.VR == nil {
		vr = element.Tag.DictionaryVR()
	}

	length, err := calculateValueLength(element)
	if err != nil {
		return element, fmt.Errorf("calculating value length: %v", err)
	}

	return &DataElement{element.Tag, vr, element.ValueField, length}, nil
}

func writeVR(dw *dcmWriter, syntax Encoding, vr *VR) error {
	if syntax.Implicit {
		// implicit VR syntax does not include VR in the DICOM file
		return nil
	}
	return dw.String(vr.Name)
}

// calculateValueLength returns the even length of the encoded ValueField. Sequences and pixel data
// in the encapsulated format are always written with an undefined length.
func calculateValueLength(element *DataElement) (uint32, error) {
	numBytes := int64(0)

	switch v := element.ValueField.(type) {
	case nil:
		numBytes = 0
	case []string:
		for _, s := range v {
			numBytes += int64(len(s))
		}
		if len(v) > 0 { // requires "\" delimiter
			numBytes += int64(len(v)) - 1
		}
	case *BulkDataBuffer:
		if v.Encapsulated() {
			return UndefinedLength, nil
		}
		numBytes = v.length()
	case []byte:
		numBytes = int64(len(v))
	case []int16:
		numBytes = int64(len(v)) * 2
	case []uint16:
		numBytes = int64(len(v)) * 2
	case []int32:
		numBytes = int64(len(v)) * 4
	case []uint32:
		numBytes = int64(len(v)) * 4
	case []float32:
		numBytes = int64(len(v)) * 4
	case []float64:
		numBytes = int64(len(v)) * 8
	case []int64:
		numBytes = int64(len(v)) * 8
	case []uint64:
		numBytes = int64(len(v)) * 8
	case *Sequence:
		return UndefinedLength, nil
	default:
		return 0, fmt.Errorf("unexpected ValueField type %T", element.ValueField)
	}

	if numBytes%2 != 0 {
		numBytes++
	}

	if numBytes >= math.MaxUint32 {
		return 0, fmt.Errorf("value of %d bytes does not fit a 32 bit length", numBytes)
	}

	return uint32(numBytes), nil
}

func writeValueLength(dw *dcmWriter, syntax Encoding, vr *VR, length uint32) error {
	if syntax.Implicit {
		return dw.UInt32(syntax.ByteOrder, length)
	}

	// For explicit VR, lengths can be stored in a 32 bit field or a 16 bit field
	// depending on the VR type. The 2 cases are defined at the link:
	// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.2

	if vr.has32BitLength() {
		// case 1: 32-bit length
		if err := dw.UInt16(syntax.ByteOrder, 0); err != nil {
			return fmt.Errorf("writing reserved field: %w", err)
		}
		if err := dw.UInt32(syntax.ByteOrder, length); err != nil {
			return fmt.Errorf("writing 32 bit length: %w", err)
		}
		return nil
	}

	// case 2: 16-bit length
	if length > math.MaxUint16 {
		return fmt.Errorf("data element value length exceeds unsigned 16-bit length")
	}
	if err := dw.UInt16(syntax.ByteOrder, uint16(length)); err != nil {
		return fmt.Errorf("writing 16 bit length: %w", err)
	}
	return nil
}

func writeValue(dw *dcmWriter, syntax Encoding, vr *VR, valueField interface{}) error {
	if valueField == nil {
		return nil
	}

	spacePadding := byte(0x20)
	nullPadding := byte(0x00)

	switch vr.kind {
	case textVR:
		return writeText(dw, spacePadding, valueField)
	case numberBinaryVR:
		return writeNumberBinary(dw, syntax, valueField)
	case bulkDataVR:
		return writeBulkData(dw, syntax, vr, valueField)
	case uniqueIdentifierVR:
		return writeText(dw, nullPadding, valueField)
	case sequenceVR:
		return writeSequence(dw, syntax, valueField)
	case tagVR:
		return writeTag(dw, syntax.ByteOrder, valueField)
	default:
		return fmt.Errorf("unknown vr kind found: %v", vr.kind)
	}
}

func writeText(dw *dcmWriter, paddingByte byte, v interface{}) error {
	strs, ok := v.([]string)
	if !ok {
		return fmt.Errorf("expected type []string got %T", v)
	}

	b := strings.Join(strs, "\\")
	if len(b)%2 != 0 {
		b += string(paddingByte)
	}

	return dw.String(b)
}

func writeNumberBinary(dw *dcmWriter, syntax Encoding, v interface{}) error {
	switch field := v.(type) {
	case []int16, []uint16, []int32, []uint32, []float32, []float64, []int64, []uint64:
		return binary.Write(dw, syntax.ByteOrder, v)
	default:
		return fmt.Errorf("unsupported binary number type: %T", field)
	}
}

func writeBulkData(dw *dcmWriter, syntax Encoding, vr *VR, v interface{}) error {
	switch field := v.(type) {
	case *BulkDataBuffer:
		if field.Encapsulated() {
			return writeEncapsulatedFormat(dw, syntax.ByteOrder, field.Data())
		}
		b := field.Bytes()
		if vr == OWVR && !syntax.LittleEndian() {
			swapped := make([]byte, len(b))
			copy(swapped, b)
			swapBytes(swapped, 2)
			b = swapped
		}
		return writePadded(dw, b)
	case []byte:
		return writePadded(dw, field)
	case []int16, []uint16, []int32, []uint32, []float32, []float64, []int64, []uint64:
		return binary.Write(dw, syntax.ByteOrder, field)
	case []string:
		return writeText(dw, ' ', v)
	default:
		return fmt.Errorf("unknown bulk data type: %T", v)
	}
}

func writePadded(dw *dcmWriter, b []byte) error {
	if err := dw.Bytes(b); err != nil {
		return err
	}
	if len(b)%2 != 0 {
		return dw.Bytes([]byte{0})
	}
	return nil
}

func writeSequence(dw *dcmWriter, syntax Encoding, v interface{}) error {
	seq, ok := v.(*Sequence)
	if !ok {
		return fmt.Errorf("unknown sequence type found: %T (expected *Sequence)", v)
	}

	for _, item := range seq.Items {
		if err := dw.Tag(syntax.ByteOrder, ItemTag); err != nil {
			return fmt.Errorf("writing item tag: %v", err)
		}
		if err := dw.UInt32(syntax.ByteOrder, UndefinedLength); err != nil {
			return fmt.Errorf("writing item length: %v", err)
		}

		if err := writeDataSet(dw, syntax, item); err != nil {
			return fmt.Errorf("writing sequence item: %v", err)
		}

		if err := dw.Delimiter(syntax.ByteOrder, ItemDelimitationItemTag); err != nil {
			return fmt.Errorf("writing item delimitation item: %v", err)
		}
	}

	return dw.Delimiter(syntax.ByteOrder, SequenceDelimitationItemTag)
}

func writeTag(dr *dcmWriter, order binary.ByteOrder, valueField interface{}) error {
	tags, ok := valueField.([]uint32)
	if !ok {
		return fmt.Errorf("unexpected type for tag VR: %T (expected []uint32)", valueField)
	}
	for _, tag := range tags {
		if err := dr.Tag(order, DataElementTag(tag)); err != nil {
			return err
		}
	}
	return nil
}

func writeDataSet(dw *dcmWriter, syntax Encoding, ds *DataSet) error {
	for _, element := range ds.SortedElements() {
		if err := writeDataElement(dw, syntax, element); err != nil {
			return fmt.Errorf("writing data element: %v", err)
		}
	}
	return nil
}
