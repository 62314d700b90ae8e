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
	"io"
	"strings"
)

// Sequence models a DICOM sequence
type Sequence struct {
	Items []*DataSet
}

func (seq *Sequence) String() string {
	return seq.string(0)
}

func (seq *Sequence) string(indentLvl int) string {
	lines := make([]string, 0)
	for _, obj := range seq.Items {
		lines = append(lines, obj.string(indentLvl+1))
	}
	return "\n" + strings.Join(lines, "\n")
}

func (seq *Sequence) append(dataSet *DataSet) {
	seq.Items = append(seq.Items, dataSet)
}

func readSequence(dr *dcmReader, length uint32, syntax Encoding) (*Sequence, error) {
	dr, err := dr.Nested()
	if err != nil {
		return nil, err
	}
	if length != UndefinedLength {
		dr = dr.Limit(int64(length))
	}

	seq := &Sequence{Items: []*DataSet{}}
	for {
		tag, err := processItemTag(dr, syntax.ByteOrder)
		if err == io.EOF {
			if length == UndefinedLength {
				return nil, fmt.Errorf("unexpected EOF in undefined length sequence")
			}
			return seq, nil
		}
		if err != nil {
			return nil, err
		}

		itemLength, err := dr.UInt32(syntax.ByteOrder)
		if err != nil {
			return nil, fmt.Errorf("reading sequence item length: %v", err)
		}

		if tag == SequenceDelimitationItemTag {
			if itemLength != 0 {
				return nil, fmt.Errorf("expected 0 length on sequence delimiter length")
			}
			return seq, nil
		}

		item, err := readSeqItem(dr, itemLength, syntax)
		if err != nil {
			return nil, fmt.Errorf("reading sequence item %d: %v", len(seq.Items), err)
		}
		seq.append(item)
	}
}

func readSeqItem(dr *dcmReader, itemLength uint32, syntax Encoding) (*DataSet, error) {
	if itemLength != UndefinedLength {
		dr = dr.Limit(int64(itemLength))
	}

	item := &DataSet{Elements: map[DataElementTag]*DataElement{}}
	for {
		element, err := readDataElement(dr, syntax)
		if err == io.EOF {
			return item, nil
		}
		if err != nil {
			return nil, err
		}
		item.Add(element)
	}
}

func processItemTag(dr *dcmReader, order binary.ByteOrder) (DataElementTag, error) {
	tag, err := dr.Tag(order)
	if err == io.EOF {
		return tag, io.EOF
	}
	if err != nil {
		return tag, fmt.Errorf("unexpected error reading item tag: %v", err)
	}
	if tag != ItemTag && tag != SequenceDelimitationItemTag {
		return tag, fmt.Errorf("invalid item tag in sequence, got %08X want %08X or %08X",
			uint32(tag), uint32(ItemTag), uint32(SequenceDelimitationItemTag))
	}

	return tag, nil
}
