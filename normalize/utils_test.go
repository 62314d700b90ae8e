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

package normalize

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/medbrief/dicom-normalizer/dicom"
)

const (
	testSOPClassUID    = "1.2.840.10008.5.1.4.1.1.2"
	testSOPInstanceUID = "1.2.826.0.1.3680043.2.1125.1.42"
)

var (
	privateCreatorTag = dicom.NewTag(0x0009, 0x0010)
	privateValueTag   = dicom.NewTag(0x0009, 0x1001)
)

// imageBody returns a 2x2 8 bit grayscale image with a private block.
func imageBody() map[dicom.DataElementTag]interface{} {
	return map[dicom.DataElementTag]interface{}{
		dicom.SOPClassUIDTag:               []string{testSOPClassUID},
		dicom.SOPInstanceUIDTag:            []string{testSOPInstanceUID},
		dicom.ModalityTag:                  []string{"CT"},
		dicom.ManufacturerTag:              []string{"GE MEDICAL SYSTEMS"},
		privateCreatorTag:                  []string{"ACME 1.0"},
		privateValueTag:                    dicom.NewBulkDataBuffer([]byte{0xAB, 0xCD}),
		dicom.SamplesPerPixelTag:           []uint16{1},
		dicom.PhotometricInterpretationTag: []string{"MONOCHROME2"},
		dicom.RowsTag:                      []uint16{2},
		dicom.ColumnsTag:                   []uint16{2},
		dicom.BitsAllocatedTag:             []uint16{8},
		dicom.BitsStoredTag:                []uint16{8},
		dicom.HighBitTag:                   []uint16{7},
		dicom.PixelRepresentationTag:       []uint16{0},
		dicom.PixelDataTag:                 dicom.NewBulkDataBuffer([]byte{1, 2, 3, 4}),
	}
}

// newPart10File returns a file declaring syntaxUID with body encoded accordingly.
func newPart10File(syntaxUID string, body map[dicom.DataElementTag]interface{}) *dicom.File {
	f := dicom.NewFile(dicom.EncodingForSyntax(syntaxUID))
	f.Meta = dicom.NewDataSet(map[dicom.DataElementTag]interface{}{
		dicom.FileMetaInformationVersionTag: dicom.NewBulkDataBuffer([]byte{0x00, 0x01}),
		dicom.MediaStorageSOPClassUIDTag:    []string{testSOPClassUID},
		dicom.MediaStorageSOPInstanceUIDTag: []string{testSOPInstanceUID},
		dicom.TransferSyntaxUIDTag:          []string{syntaxUID},
		dicom.ImplementationClassUIDTag:     []string{"1.2.3.4"},
	})
	f.Body = dicom.NewDataSet(body)
	return f
}

// jpegFile returns a JPEG Baseline file holding an 8x8 grayscale frame.
func jpegFile(t *testing.T) *dicom.File {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("jpeg.Encode(_, _, _) => %v", err)
	}

	body := imageBody()
	body[dicom.RowsTag] = []uint16{8}
	body[dicom.ColumnsTag] = []uint16{8}
	delete(body, dicom.PixelDataTag)
	f := newPart10File(dicom.JPEGBaselineUID, body)
	f.Body.Add(&dicom.DataElement{
		Tag:         dicom.PixelDataTag,
		VR:          dicom.OBVR,
		ValueField:  dicom.NewEncapsulatedBuffer(nil, buf.Bytes()),
		ValueLength: dicom.UndefinedLength,
	})
	return f
}

// rawImplicitDataSet is a data set without preamble or file meta information, in Implicit VR
// Little Endian, with native pixel data.
var rawImplicitDataSet = []byte{
	// (0008,0060) Modality
	0x08, 0x00, 0x60, 0x00, 0x02, 0x00, 0x00, 0x00, 'C', 'T',
	// (0008,0070) Manufacturer
	0x08, 0x00, 0x70, 0x00, 0x08, 0x00, 0x00, 0x00, 'S', 'I', 'E', 'M', 'E', 'N', 'S', ' ',
	// (0028,0002) Samples per Pixel
	0x28, 0x00, 0x02, 0x00, 0x02, 0x00, 0x00, 0x00, 0x01, 0x00,
	// (0028,0004) Photometric Interpretation
	0x28, 0x00, 0x04, 0x00, 0x0C, 0x00, 0x00, 0x00, 'M', 'O', 'N', 'O', 'C', 'H', 'R', 'O', 'M', 'E', '2', ' ',
	// (0028,0010) Rows
	0x28, 0x00, 0x10, 0x00, 0x02, 0x00, 0x00, 0x00, 0x02, 0x00,
	// (0028,0011) Columns
	0x28, 0x00, 0x11, 0x00, 0x02, 0x00, 0x00, 0x00, 0x02, 0x00,
	// (0028,0100) Bits Allocated
	0x28, 0x00, 0x00, 0x01, 0x02, 0x00, 0x00, 0x00, 0x08, 0x00,
	// (7FE0,0010) Pixel Data
	0xE0, 0x7F, 0x10, 0x00, 0x04, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03, 0x04,
}

func writeInput(t *testing.T, dir, name string, f *dicom.File) string {
	t.Helper()
	var buf bytes.Buffer
	if err := dicom.WriteFile(&buf, f); err != nil {
		t.Fatalf("WriteFile(_, _) => %v", err)
	}
	return writeBytes(t, dir, name, buf.Bytes())
}

func writeBytes(t *testing.T, dir, name string, b []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("os.WriteFile(%q) => %v", path, err)
	}
	return path
}

// readOutput parses path as a strict Part 10 file.
func readOutput(t *testing.T, path string) *dicom.File {
	t.Helper()
	in, err := os.Open(path)
	if err != nil {
		t.Fatalf("os.Open(%q) => %v", path, err)
	}
	defer in.Close()
	f, err := dicom.ParseFile(in)
	if err != nil {
		t.Fatalf("ParseFile(%q) => %v", path, err)
	}
	return f
}

// stubDecompressor records the syntaxes it is called with and returns fixed results. When block
// is set every call waits for it to be closed.
type stubDecompressor struct {
	elements []*dicom.DataElement
	err      error
	panicMsg string
	block    chan struct{}

	mu       sync.Mutex
	syntaxes []string
}

func (s *stubDecompressor) Decompress(ctx context.Context, body *dicom.DataSet, syntaxUID string) ([]*dicom.DataElement, error) {
	s.mu.Lock()
	s.syntaxes = append(s.syntaxes, syntaxUID)
	s.mu.Unlock()

	if s.block != nil {
		<-s.block
	}
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.elements, s.err
}

func (s *stubDecompressor) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.syntaxes...)
}
