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
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

func readDataElement(dr *dcmReader, syntax Encoding) (*DataElement, error) {
	tag, err := readElementTag(dr, syntax)
	if err != nil {
		return nil, err
	}
	return readDataElementBody(dr, syntax, tag)
}

// readElementTag reads the tag of the next Data Element. io.EOF is returned at the end of the
// input and when an Item Delimitation Item terminates a nested data set of undefined length.
func readElementTag(dr *dcmReader, syntax Encoding) (DataElementTag, error) {
	tag, err := dr.Tag(syntax.ByteOrder)
	if err == io.EOF {
		return 0, io.EOF
	}
	if err != nil {
		return 0, fmt.Errorf("getting tag: %v", err)
	}

	if tag == ItemDelimitationItemTag {
		// handles the case when we are parsing a nested data set within a sequence with undefined
		// length. This code should never run for the top level data set
		length, err := dr.UInt32(syntax.ByteOrder)
		if err != nil {
			return 0, fmt.Errorf("reading 32 bit length of item delimitation: %v", err)
		}
		if length != 0 {
			return 0, fmt.Errorf("wrong length for item delimiter. got %v, want %v", length, 0)
		}
		return 0, io.EOF
	}

	return tag, nil
}

func readDataElementBody(dr *dcmReader, syntax Encoding, tag DataElementTag) (*DataElement, error) {
	vr, err := syntax.readVR(dr, tag)
	if err != nil {
		return nil, fmt.Errorf("getting vr %v", err)
	}

	length, err := syntax.readValueLength(dr, vr)
	if err != nil {
		return nil, fmt.Errorf("getting length: %v", err)
	}

	value, vr, err := readValue(tag, dr, vr, length, syntax)
	if err != nil {
		return nil, fmt.Errorf("parsing value of %v: %v", tag, err)
	}

	return &DataElement{tag, vr, value, length}, nil
}

func readValue(tag DataElementTag, dr *dcmReader, vr *VR, length uint32, syntax Encoding) (interface{}, *VR, error) {
	var value interface{}
	var err error
	switch vr.kind {
	case textVR:
		value, err = readText(dr, length, vr, unicode.IsSpace)
	case numberBinaryVR:
		value, err = readNumberBinary(dr, length, vr, syntax.ByteOrder)
	case bulkDataVR:
		if length == UndefinedLength && tag != PixelDataTag {
			// A value of unknown VR and undefined length is a sequence encoded in Implicit VR
			// Little Endian as specified in
			// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2.2
			if vr == UNVR {
				value, err = readSequence(dr, length, implicitVRLittleEndian)
				return value, SQVR, err
			}
			return nil, vr, errors.New("syntax with undefined length in non-pixel data not supported")
		}
		value, err = readBulkData(dr, tag, vr, length, syntax.ByteOrder)
	case uniqueIdentifierVR:
		value, err = readText(dr, length, vr, func(r rune) bool {
			return r == 0x00 || r == ' '
		})
	case sequenceVR:
		value, err = readSequence(dr, length, syntax)
	case tagVR:
		value, err = readTag(dr, syntax, length)
	default:
		err = fmt.Errorf("unknown vr type found: %v", vr.kind)
	}
	return value, vr, err
}

func readTag(dr *dcmReader, syntax Encoding, length uint32) ([]uint32, error) {
	ret := make([]uint32, length/4) // 4 bytes per tag

	for i := range ret {
		t, err := dr.Tag(syntax.ByteOrder)
		if err != nil {
			return nil, err
		}
		ret[i] = uint32(t)
	}
	if rem := length % 4; rem != 0 {
		if err := dr.Skip(int64(rem)); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func readText(dr *dcmReader, length uint32, vr *VR, isPadding func(rune) bool) ([]string, error) {
	if length == 0 {
		return []string{}, nil
	}
	if length == UndefinedLength {
		return nil, fmt.Errorf("undefined length for text vr %v", vr)
	}

	valueField, err := dr.String(int64(length))
	if err != nil {
		return nil, fmt.Errorf("reading text field value: %v", err)
	}

	// deal with value multiplicity
	strs := strings.Split(valueField, "\\")
	for i, s := range strs {
		if vr == UTVR || vr == STVR || vr == LTVR {
			strs[i] = strings.TrimRightFunc(s, isPadding)
		} else {
			strs[i] = strings.TrimFunc(s, isPadding)
		}
	}
	return strs, nil
}

func readNumberBinary(dr *dcmReader, length uint32, vr *VR, order binary.ByteOrder) (interface{}, error) {
	if length == UndefinedLength {
		return nil, fmt.Errorf("undefined length for binary vr %v", vr)
	}
	buff, err := dr.Bytes(int64(length))
	if err != nil {
		return nil, fmt.Errorf("reading binary value: %v", err)
	}

	var data interface{}
	switch vr {
	case SSVR:
		data = make([]int16, length/2)
	case USVR:
		data = make([]uint16, length/2)
	case SLVR:
		data = make([]int32, length/4)
	case ULVR:
		data = make([]uint32, length/4)
	case FLVR:
		data = make([]float32, length/4)
	case FDVR:
		data = make([]float64, length/8)
	case SVVR:
		data = make([]int64, length/8)
	case UVVR:
		data = make([]uint64, length/8)
	default:
		return nil, fmt.Errorf("unknown vr: %v", vr)
	}

	if err := binary.Read(bytes.NewReader(buff), order, data); err != nil {
		return nil, fmt.Errorf("binary.Read(_, _, _) => %v", err)
	}

	return data, nil
}

func readBulkData(dr *dcmReader, tag DataElementTag, vr *VR, length uint32, order binary.ByteOrder) (interface{}, error) {
	if length == UndefinedLength {
		// Specified in http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4
		// (7FE0,0010) and undefined length means pixel data in encapsulated (compressed) format
		return readEncapsulatedFormat(dr)
	}

	buff, err := dr.Bytes(int64(length))
	if err != nil {
		return nil, fmt.Errorf("reading bulk data: %v", err)
	}

	switch vr {
	case OBVR, UNVR:
		return NewBulkDataBuffer(buff), nil
	case OWVR:
		if order == binary.BigEndian {
			swapBytes(buff, 2)
		}
		return NewBulkDataBuffer(buff), nil
	default:
		return decodeFragment(buff, order, vr)
	}
}

func decodeFragment(buff []byte, order binary.ByteOrder, vr *VR) (interface{}, error) {
	// Please refer to DICOM PS3.5 Part 5 for details on UC, UR, UT value representations
	// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.1

	var valueField interface{}
	switch vr {
	case UCVR:
		// UC may be padded with trailing spaces and uses the "\" to delimit multiple values
		strs := strings.Split(string(buff), "\\")
		for i, s := range strs {
			strs[i] = strings.TrimRightFunc(s, unicode.IsSpace)
		}
		return strs, nil
	case URVR, UTVR:
		// UR: Trailing spaces shall be ignored. Backslash is not allowed. Shall be in ISO 2022 IR 6
		// UT: Trailing spaces may be ignored (and are in this implementation). Backslash not allowed.
		return []string{strings.TrimRightFunc(string(buff), unicode.IsSpace)}, nil
	case OLVR:
		valueField = make([]uint32, len(buff)/4)
	case ODVR:
		valueField = make([]float64, len(buff)/8)
	case OFVR:
		valueField = make([]float32, len(buff)/4)
	case OVVR:
		valueField = make([]uint64, len(buff)/8)
	default:
		return nil, fmt.Errorf("unexpected vr found: %v", vr)
	}

	if err := binary.Read(bytes.NewReader(buff), order, valueField); err != nil {
		return nil, fmt.Errorf("reading to buffer: %v", err)
	}

	return valueField, nil
}
