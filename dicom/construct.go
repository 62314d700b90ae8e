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
	"fmt"
	"io"
)

// WriteFile writes f as a DICOM Part 10 file to w: the preamble, the DICM prefix, the file meta
// information in Explicit VR Little Endian and the body encoded with the transfer syntax declared
// in (0002,0010). f.Encoding must agree with that transfer syntax.
//
// The File Meta Information Group Length (0002,0000) is always re-calculated. If a *DataElement
// is missing a VR it will be filled in from the DICOM Data Dictionary. The ValueLength of
// DataElements is ignored and re-calculated. f is not modified.
func WriteFile(w io.Writer, f *File) error {
	uid, ok := f.TransferSyntaxUID()
	if !ok {
		return fmt.Errorf("transfer syntax element is missing from file meta information")
	}
	syntax := EncodingForSyntax(uid)
	if syntax != f.Encoding {
		return fmt.Errorf("body encoding %v does not match transfer syntax %v (%v)", f.Encoding, uid, syntax)
	}

	for tag := range f.Meta.Elements {
		if !tag.IsMetaElement() {
			return fmt.Errorf("file meta information contains non meta element %v", tag)
		}
	}
	for tag := range f.Body.Elements {
		if tag.IsMetaElement() {
			return fmt.Errorf("data set contains file meta element %v", tag)
		}
	}

	bw := bufio.NewWriter(w)
	dw := newDcmWriter(bw)

	if err := writeDicomSignature(dw, f.Preamble); err != nil {
		return err
	}

	// The FileMetaInformationGroupLength element is a critical component of the Meta Header. It
	// stores how long the meta header is. Thus, we need to re-calculate it properly.
	meta := &DataSet{Elements: make(map[DataElementTag]*DataElement, len(f.Meta.Elements)+1)}
	for tag, element := range f.Meta.Elements {
		meta.Elements[tag] = element
	}
	metaGroupLengthElement, err := createMetaGroupLengthElement(meta)
	if err != nil {
		return fmt.Errorf("creating meta group length element: %v", err)
	}
	meta.Elements[FileMetaInformationGroupLengthTag] = metaGroupLengthElement

	// File meta elements are always in explicit VR little endian as specified in the standard
	// http://dicom.nema.org/medical/dicom/current/output/html/part10.html#sect_7.1
	if err := writeDataSet(dw, explicitVRLittleEndian, meta); err != nil {
		return fmt.Errorf("writing file meta information: %v", err)
	}

	if err := writeBody(bw, syntax, f.Body); err != nil {
		return err
	}

	return bw.Flush()
}

func writeBody(w io.Writer, syntax Encoding, body *DataSet) error {
	if !syntax.Deflated {
		if err := writeDataSet(newDcmWriter(w), syntax, body); err != nil {
			return fmt.Errorf("writing data set: %v", err)
		}
		return nil
	}

	fw, err := newDeflateWriter(w)
	if err != nil {
		return fmt.Errorf("creating deflate writer: %v", err)
	}
	if err := writeDataSet(newDcmWriter(fw), syntax, body); err != nil {
		return fmt.Errorf("writing deflated data set: %v", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("flushing deflated data set: %v", err)
	}
	return nil
}

func createMetaGroupLengthElement(dataSet *DataSet) (*DataElement, error) {
	// Please refer to the DICOM Standard Part 10 for information on the File Meta Information Group
	// Length. http://dicom.nema.org/medical/dicom/current/output/html/part10.html#sect_7.1

	size := uint32(0)
	for _, tag := range dataSet.SortedTags() {
		if tag == FileMetaInformationGroupLengthTag {
			// The Group Length stores the size of the meta elements following this tag.
			continue
		}
		element, err := processedElement(dataSet.Elements[tag])
		if err != nil {
			return nil, fmt.Errorf("processing element %v: %v", tag, err)
		}
		if element.ValueLength == UndefinedLength {
			return nil, fmt.Errorf("meta element %v has undefined length", tag)
		}
		size += explicitVRLittleEndian.elementSize(element.VR, element.ValueLength)
	}

	return &DataElement{
		Tag:         FileMetaInformationGroupLengthTag,
		VR:          FileMetaInformationGroupLengthTag.DictionaryVR(),
		ValueField:  []uint32{size},
		ValueLength: 4, // 4bytes = sizeof uint32
	}, nil
}

func writeDicomSignature(dw *dcmWriter, preamble []byte) error {
	if len(preamble) != preambleSize {
		preamble = make([]byte, preambleSize)
	}
	if err := dw.Bytes(preamble); err != nil {
		return fmt.Errorf("writing DICOM preamble: %v", err)
	}

	if err := dw.String(dicmPrefix); err != nil {
		return fmt.Errorf("writing DICOM signature: %v", err)
	}

	return nil
}
