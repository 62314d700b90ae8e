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
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	preambleSize = 128
	dicmPrefix   = "DICM"

	// number of bytes needed to tell an explicit VR element header from an implicit one
	sniffSize = 6
)

// ParseFile reads a DICOM file from r. By default r must hold a Part 10 file: the 128 byte
// preamble, the DICM prefix, the file meta information in Explicit VR Little Endian and a data set
// encoded with the transfer syntax declared in (0002,0010). See Permissive for relaxing these
// requirements.
//
// Bulk data is buffered into memory with the following types for the VR:
// *BulkDataBuffer for OW, OB, UN and for encapsulated pixel data
// []uint32 for OL
// []uint64 for OV
// []float64 for OD
// []float32 for OF
// []string for UR, UT, UC
func ParseFile(r io.Reader, opts ...ParseOption) (*File, error) {
	o := newParseOptions(opts)
	br := bufio.NewReader(r)

	f := &File{
		Meta: &DataSet{Elements: map[DataElementTag]*DataElement{}},
		Body: &DataSet{Elements: map[DataElementTag]*DataElement{}},
	}

	hasPrefix, err := readSignature(br, f)
	if err != nil {
		return nil, err
	}
	if !hasPrefix && !o.permissive {
		return nil, errors.New("missing DICM prefix, input is not a DICOM Part 10 file")
	}

	dr := newDcmReader(br)

	metaSyntax := explicitVRLittleEndian
	if !hasPrefix {
		// a raw data set: its first element tells us how it is encoded
		sniffed, err := sniffRawDataSet(br)
		if err != nil {
			return nil, err
		}
		metaSyntax = sniffed
	} else if o.permissive {
		if header, err := br.Peek(sniffSize); err == nil && !isExplicitVR(header) {
			metaSyntax = implicitVRLittleEndian
		}
	}

	if err := readMeta(br, dr, metaSyntax, f.Meta); err != nil {
		return nil, fmt.Errorf("reading file meta information: %v", err)
	}

	f.Encoding, err = bodyEncoding(br, f, metaSyntax, o.permissive)
	if err != nil {
		return nil, err
	}

	if f.Encoding.Deflated {
		fr := newDeflateReader(br)
		defer fr.Close()
		dr = newDcmReader(fr)
	}

	if err := readBody(dr, f.Encoding, f.Body, o); err != nil {
		return nil, fmt.Errorf("reading data set: %v", err)
	}

	return f, nil
}

// readSignature consumes the preamble and DICM prefix if present. A DICM prefix without a
// preamble is accepted as well.
func readSignature(br *bufio.Reader, f *File) (bool, error) {
	header, err := br.Peek(preambleSize + len(dicmPrefix))
	if err == nil && string(header[preambleSize:]) == dicmPrefix {
		f.Preamble = append([]byte(nil), header[:preambleSize]...)
		if _, err := br.Discard(len(header)); err != nil {
			return false, fmt.Errorf("skipping preamble: %v", err)
		}
		return true, nil
	}

	header, err = br.Peek(len(dicmPrefix))
	if err == nil && string(header) == dicmPrefix {
		if _, err := br.Discard(len(header)); err != nil {
			return false, fmt.Errorf("skipping DICM prefix: %v", err)
		}
		return true, nil
	}

	if len(header) == 0 {
		return false, errors.New("empty input")
	}
	return false, nil
}

// sniffRawDataSet infers the encoding of a data set that is not preceded by a DICM prefix.
func sniffRawDataSet(br *bufio.Reader) (Encoding, error) {
	header, err := br.Peek(sniffSize + 2)
	if err != nil {
		return Encoding{}, fmt.Errorf("input too short for a data set: %v", err)
	}

	syntax := sniffEncoding(header)
	group := syntax.ByteOrder.Uint16(header)
	if group%2 != 0 || group > 0x0010 {
		return Encoding{}, fmt.Errorf("input does not start with a data element, first group is %04X", group)
	}
	return syntax, nil
}

// sniffEncoding guesses the encoding of the element header in b. The byte order that yields the
// smaller group number wins, since data sets start with the low numbered groups.
func sniffEncoding(b []byte) Encoding {
	order := binary.ByteOrder(binary.LittleEndian)
	if binary.BigEndian.Uint16(b) < binary.LittleEndian.Uint16(b) {
		order = binary.BigEndian
	}

	if !isExplicitVR(b) {
		// implicit VR is always little endian
		return implicitVRLittleEndian
	}
	if order == binary.BigEndian {
		return explicitVRBigEndian
	}
	return explicitVRLittleEndian
}

func isExplicitVR(header []byte) bool {
	return len(header) >= sniffSize && IsValidVRName(string(header[tagSize:tagSize+vrSize]))
}

func readMeta(br *bufio.Reader, dr *dcmReader, syntax Encoding, meta *DataSet) error {
	for {
		b, err := br.Peek(2)
		if err == io.EOF || len(b) < 2 {
			return nil
		}
		if syntax.ByteOrder.Uint16(b) != 0x0002 {
			return nil
		}

		element, err := readDataElement(dr, syntax)
		if err != nil {
			return err
		}
		meta.Add(element)
	}
}

func bodyEncoding(br *bufio.Reader, f *File, metaSyntax Encoding, permissive bool) (Encoding, error) {
	uid, declared := f.TransferSyntaxUID()
	if declared {
		if _, known := LookupTransferSyntax(uid); !known && permissive {
			declared = false
		}
	}

	header, err := br.Peek(sniffSize)
	if err != nil {
		// nothing, or too little to sniff, follows the meta information
		if declared {
			return EncodingForSyntax(uid), nil
		}
		return metaSyntax, nil
	}

	if !declared {
		if !permissive {
			return Encoding{}, errors.New("file meta information does not declare a transfer syntax")
		}
		return sniffEncoding(header), nil
	}

	syntax := EncodingForSyntax(uid)
	if !permissive || syntax.Deflated {
		return syntax, nil
	}

	// the declaration is not trusted blindly: some writers label implicit data sets as explicit
	// and vice versa.
	if explicit := isExplicitVR(header); explicit == syntax.Implicit {
		if explicit {
			return sniffEncoding(header), nil
		}
		return implicitVRLittleEndian, nil
	}
	return syntax, nil
}

func readBody(dr *dcmReader, syntax Encoding, body *DataSet, o parseOptions) error {
	for {
		tag, err := readElementTag(dr, syntax)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if o.stopBeforePixels && isPixelDataTag(tag) {
			return nil
		}

		element, err := readDataElementBody(dr, syntax, tag)
		if err != nil {
			return err
		}
		if tag.IsMetaElement() {
			// group 0002 is only allowed in the file meta information
			continue
		}
		body.Add(element)
	}
}
