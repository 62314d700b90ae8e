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
	"io"

	"github.com/klauspost/compress/flate"
)

// The Deflated Explicit VR Little Endian transfer syntax compresses everything following the file
// meta information with raw deflate (RFC 1951) and no zlib header.
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.5

func newDeflateReader(r io.Reader) io.ReadCloser {
	return flate.NewReader(r)
}

func newDeflateWriter(w io.Writer) (*flate.Writer, error) {
	return flate.NewWriter(w, flate.DefaultCompression)
}
