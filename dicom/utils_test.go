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
	"testing"
)

func dcmReaderFromBytes(data []byte) *dcmReader {
	return newDcmReader(bytes.NewBuffer(data))
}

func part10Header() []byte {
	return append(make([]byte, preambleSize), dicmPrefix...)
}

// explicitLEUIElement encodes a UI element in Explicit VR Little Endian with null padding.
func explicitLEUIElement(tag DataElementTag, uid string) []byte {
	value := []byte(uid)
	if len(value)%2 != 0 {
		value = append(value, 0x00)
	}
	b := []byte{
		byte(tag.GroupNumber()), byte(tag.GroupNumber() >> 8),
		byte(tag.ElementNumber()), byte(tag.ElementNumber() >> 8),
		'U', 'I', byte(len(value)), byte(len(value) >> 8),
	}
	return append(b, value...)
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func mustParseFile(t *testing.T, data []byte, opts ...ParseOption) *File {
	t.Helper()
	f, err := ParseFile(bytes.NewReader(data), opts...)
	if err != nil {
		t.Fatalf("ParseFile(_) => %v", err)
	}
	return f
}
