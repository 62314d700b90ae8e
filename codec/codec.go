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

// Package codec decodes the encapsulated pixel data of compressed DICOM transfer syntaxes into
// native pixel data.
//
// A Registry maps transfer syntax UIDs to Decoders. When the transfer syntax of a data set is not
// known the Registry inspects the first fragment of the pixel data and picks the Decoder that
// recognizes it.
package codec

import (
	"context"
	"errors"
	"fmt"

	"github.com/medbrief/dicom-normalizer/dicom"
)

var (
	// ErrUnsupported is returned when no Decoder handles the transfer syntax of the pixel data.
	ErrUnsupported = errors.New("unsupported transfer syntax")

	// ErrNotEncapsulated is returned when the pixel data is native (uncompressed).
	ErrNotEncapsulated = errors.New("pixel data is not encapsulated")

	// ErrNoPixelData is returned when the data set has no pixel data element.
	ErrNoPixelData = errors.New("no pixel data")
)

// MaxDecodedBytes bounds the native pixel data a single data set may decompress to. Larger
// images are reported as ErrUnsupported.
const MaxDecodedBytes = 1 << 30

// FrameInfo describes the layout of the decoded pixels of a frame, as given by the Image Pixel
// Module of the data set.
type FrameInfo struct {
	Rows                      int
	Columns                   int
	SamplesPerPixel           int
	BitsAllocated             int
	PixelRepresentation       int
	PhotometricInterpretation string
}

// BytesPerSample returns the number of bytes each sample occupies in native pixel data.
func (fi FrameInfo) BytesPerSample() int {
	return (fi.BitsAllocated + 7) / 8
}

// FrameSize returns the size in bytes of one native frame.
func (fi FrameInfo) FrameSize() int {
	return fi.Rows * fi.Columns * fi.SamplesPerPixel * fi.BytesPerSample()
}

// Frame is a decoded frame. Data holds the samples little endian and interleaved pixel by pixel
// (Planar Configuration 0).
type Frame struct {
	Data []byte

	// PhotometricInterpretation of Data. Decoders that convert color spaces report the new one.
	PhotometricInterpretation string
}

// Decoder decodes the frames of a family of transfer syntaxes.
type Decoder interface {
	// Syntaxes returns the UIDs of the transfer syntaxes the Decoder handles.
	Syntaxes() []string

	// Sniff reports whether fragment looks like the start of a frame this Decoder can decode and
	// returns the transfer syntax it belongs to.
	Sniff(fragment []byte) (uid string, ok bool)

	// Decode decodes a single frame.
	Decode(frame []byte, info FrameInfo) (*Frame, error)
}

// Registry selects the Decoder for pixel data. A Registry is safe for concurrent use once all
// Decoders have been registered.
type Registry struct {
	decoders []Decoder
	bySyntax map[string]Decoder
}

// NewRegistry returns a Registry holding decoders. A syntax handled by more than one Decoder is
// decoded by the first one given.
func NewRegistry(decoders ...Decoder) *Registry {
	r := &Registry{bySyntax: map[string]Decoder{}}
	for _, d := range decoders {
		r.Register(d)
	}
	return r
}

// DefaultRegistry returns a Registry with every Decoder of this package.
func DefaultRegistry() *Registry {
	return NewRegistry(RLEDecoder{}, JPEGDecoder{})
}

// Register adds d to the Registry.
func (r *Registry) Register(d Decoder) {
	r.decoders = append(r.decoders, d)
	for _, uid := range d.Syntaxes() {
		if _, ok := r.bySyntax[uid]; !ok {
			r.bySyntax[uid] = d
		}
	}
}

// Lookup returns the Decoder registered for the transfer syntax uid.
func (r *Registry) Lookup(uid string) (Decoder, bool) {
	d, ok := r.bySyntax[uid]
	return d, ok
}

// Supports reports whether pixel data of the transfer syntax uid can be decoded.
func (r *Registry) Supports(uid string) bool {
	_, ok := r.bySyntax[uid]
	return ok
}

// Decompress decodes the encapsulated pixel data of body. syntaxUID is the declared transfer
// syntax of body, or the empty string when it is not known, in which case the Decoder is chosen
// from the content of the first fragment.
//
// body is not modified. The returned elements replace their counterparts in body: the native
// Pixel Data and the Image Pixel Module attributes whose values change with decompression.
func (r *Registry) Decompress(ctx context.Context, body *dicom.DataSet, syntaxUID string) ([]*dicom.DataElement, error) {
	element, ok := body.Get(dicom.PixelDataTag)
	if !ok {
		return nil, ErrNoPixelData
	}
	pixels, ok := element.ValueField.(*dicom.BulkDataBuffer)
	if !ok || !pixels.Encapsulated() {
		return nil, ErrNotEncapsulated
	}

	decoder, uid, err := r.selectDecoder(pixels, syntaxUID)
	if err != nil {
		return nil, err
	}

	info, err := frameInfo(body)
	if err != nil {
		return nil, err
	}
	numFrames, err := numberOfFrames(body)
	if err != nil {
		return nil, err
	}
	if info.FrameSize() > MaxDecodedBytes/numFrames {
		return nil, fmt.Errorf("%w: %d frames of %dx%dx%d samples exceed %d decoded bytes", ErrUnsupported,
			numFrames, info.Columns, info.Rows, info.SamplesPerPixel, MaxDecodedBytes)
	}

	frames, err := splitFrames(pixels, numFrames)
	if err != nil {
		return nil, fmt.Errorf("splitting fragments into frames: %w", err)
	}

	var data []byte
	photometric := info.PhotometricInterpretation
	for i, frame := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		decoded, err := decoder.Decode(frame, info)
		if err != nil {
			return nil, fmt.Errorf("decoding frame %d: %w", i, err)
		}
		if len(decoded.Data) != info.FrameSize() {
			return nil, fmt.Errorf("frame %d decoded to %d bytes, want %d", i, len(decoded.Data), info.FrameSize())
		}
		data = append(data, decoded.Data...)
		photometric = decoded.PhotometricInterpretation
	}

	return replacementElements(body, uid, info, photometric, data), nil
}

// Sniff guesses the transfer syntax of encapsulated pixel data from its first non-empty fragment.
// ok is false when no Decoder recognizes the content.
func (r *Registry) Sniff(pixels *dicom.BulkDataBuffer) (uid string, ok bool) {
	fragment := firstFragment(pixels)
	for _, d := range r.decoders {
		if uid, ok := d.Sniff(fragment); ok {
			return uid, true
		}
	}
	return "", false
}

func (r *Registry) selectDecoder(pixels *dicom.BulkDataBuffer, syntaxUID string) (Decoder, string, error) {
	if syntaxUID != "" {
		d, ok := r.Lookup(syntaxUID)
		if !ok {
			return nil, "", fmt.Errorf("%w: %s", ErrUnsupported, syntaxUID)
		}
		return d, syntaxUID, nil
	}

	fragment := firstFragment(pixels)
	for _, d := range r.decoders {
		if uid, ok := d.Sniff(fragment); ok {
			if !r.Supports(uid) {
				return nil, "", fmt.Errorf("%w: content looks like %s", ErrUnsupported, uid)
			}
			return d, uid, nil
		}
	}
	if isJPEG2000(fragment) {
		return nil, "", fmt.Errorf("%w: content looks like JPEG 2000", ErrUnsupported)
	}
	return nil, "", fmt.Errorf("%w: unrecognized pixel data content", ErrUnsupported)
}

func firstFragment(pixels *dicom.BulkDataBuffer) []byte {
	for _, fragment := range pixels.Fragments() {
		if len(fragment) > 0 {
			return fragment
		}
	}
	return nil
}

// isJPEG2000 detects a JPEG 2000 codestream (SOC followed by SIZ) or a JP2 file signature box.
func isJPEG2000(b []byte) bool {
	if len(b) >= 4 && b[0] == 0xFF && b[1] == 0x4F && b[2] == 0xFF && b[3] == 0x51 {
		return true
	}
	return len(b) >= 12 && string(b[4:8]) == "jP  "
}

func replacementElements(body *dicom.DataSet, uid string, info FrameInfo, photometric string, data []byte) []*dicom.DataElement {
	vr := dicom.OWVR
	if info.BitsAllocated <= 8 {
		vr = dicom.OBVR
	}
	length := uint32(len(data))
	if length%2 != 0 {
		length++
	}

	elements := []*dicom.DataElement{
		{Tag: dicom.PixelDataTag, VR: vr, ValueField: dicom.NewBulkDataBuffer(data), ValueLength: length},
	}

	if photometric != "" && photometric != info.PhotometricInterpretation {
		elements = append(elements, textElement(dicom.PhotometricInterpretationTag, dicom.CSVR, photometric))
	}
	if info.SamplesPerPixel > 1 {
		elements = append(elements, &dicom.DataElement{
			Tag:         dicom.PlanarConfigurationTag,
			VR:          dicom.USVR,
			ValueField:  []uint16{0},
			ValueLength: 2,
		})
	}
	if ts, ok := dicom.LookupTransferSyntax(uid); ok && ts.Lossy {
		if _, ok := body.Get(dicom.LossyImageCompressionTag); !ok {
			elements = append(elements, textElement(dicom.LossyImageCompressionTag, dicom.CSVR, "01"))
		}
	}
	return elements
}

func textElement(tag dicom.DataElementTag, vr *dicom.VR, value string) *dicom.DataElement {
	length := uint32(len(value))
	if length%2 != 0 {
		length++
	}
	return &dicom.DataElement{Tag: tag, VR: vr, ValueField: []string{value}, ValueLength: length}
}
