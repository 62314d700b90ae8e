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

import "fmt"

// File is a DICOM file: the optional 128 byte preamble, the file meta information (group 0002) and
// the data set that follows it.
type File struct {
	// Preamble is the 128 byte preamble of a Part 10 file. It is nil when the input had none.
	Preamble []byte

	// Meta holds the file meta elements. It is empty when the input had no file meta information.
	Meta *DataSet

	// Body holds every element outside of group 0002.
	Body *DataSet

	// Encoding is the encoding of Body as read from, or to be written to, the byte stream.
	Encoding Encoding
}

// NewFile returns an empty File with a zero preamble whose body is encoded with enc.
func NewFile(enc Encoding) *File {
	return &File{
		Preamble: make([]byte, preambleSize),
		Meta:     &DataSet{Elements: map[DataElementTag]*DataElement{}},
		Body:     &DataSet{Elements: map[DataElementTag]*DataElement{}},
		Encoding: enc,
	}
}

// TransferSyntaxUID returns the value of (0002,0010). ok is false when the element is missing or
// empty.
func (f *File) TransferSyntaxUID() (uid string, ok bool) {
	uid, ok = f.Meta.FirstString(TransferSyntaxUIDTag)
	if uid == "" {
		return "", false
	}
	return uid, ok
}

// HasMeta reports whether the file carries at least one file meta element.
func (f *File) HasMeta() bool {
	return f.Meta.Len() > 0
}

func (f *File) String() string {
	return fmt.Sprintf("meta:\n%v\nbody (%v):\n%v", f.Meta, f.Encoding, f.Body)
}
