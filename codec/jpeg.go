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

package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/medbrief/dicom-normalizer/dicom"
)

// JPEGDecoder decodes 8 bit JPEG Baseline (Process 1) and JPEG Extended (Process 2 & 4) frames.
// 12 bit Extended frames are reported as errors.
type JPEGDecoder struct{}

// Syntaxes implements Decoder.
func (JPEGDecoder) Syntaxes() []string {
	return []string{dicom.JPEGBaselineUID, dicom.JPEGExtendedUID}
}

// Sniff implements Decoder. The transfer syntax is taken from the first Start Of Frame marker so
// that lossless and JPEG-LS streams are recognized, and rejected, as well.
func (JPEGDecoder) Sniff(fragment []byte) (string, bool) {
	if len(fragment) < 4 || fragment[0] != 0xFF || fragment[1] != 0xD8 {
		return "", false
	}

	for i := 2; i+4 <= len(fragment); {
		if fragment[i] != 0xFF {
			return "", false
		}
		marker := fragment[i+1]
		switch marker {
		case 0xC0:
			return dicom.JPEGBaselineUID, true
		case 0xC1, 0xC2:
			return dicom.JPEGExtendedUID, true
		case 0xC3:
			return dicom.JPEGLosslessSV1UID, true
		case 0xF7:
			return dicom.JPEGLSLosslessUID, true
		case 0xDA, 0xD9:
			// start of scan or end of image without a frame header
			return "", false
		}
		if marker == 0xFF {
			// fill byte
			i++
			continue
		}
		length := int(fragment[i+2])<<8 | int(fragment[i+3])
		i += 2 + length
	}
	return "", false
}

// Decode implements Decoder. Color images are converted from YCbCr to RGB.
func (JPEGDecoder) Decode(frame []byte, info FrameInfo) (*Frame, error) {
	if info.BitsAllocated != 8 {
		return nil, fmt.Errorf("jpeg decoding of %d bit samples is not supported", info.BitsAllocated)
	}

	// the image is allocated from the frame header, so check it before decoding
	config, err := jpeg.DecodeConfig(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decoding jpeg header: %w", err)
	}
	if config.Width != info.Columns || config.Height != info.Rows {
		return nil, fmt.Errorf("jpeg is %dx%d, data set declares %dx%d", config.Width, config.Height, info.Columns, info.Rows)
	}

	img, err := jpeg.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("decoding jpeg: %w", err)
	}
	bounds := img.Bounds()

	switch m := img.(type) {
	case *image.Gray:
		if info.SamplesPerPixel != 1 {
			return nil, fmt.Errorf("grayscale jpeg for %d samples per pixel", info.SamplesPerPixel)
		}
		out := make([]byte, 0, info.FrameSize())
		for y := 0; y < info.Rows; y++ {
			start := m.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			out = append(out, m.Pix[start:start+info.Columns]...)
		}
		return &Frame{Data: out, PhotometricInterpretation: info.PhotometricInterpretation}, nil
	case *image.YCbCr, *image.RGBA, *image.NRGBA:
		if info.SamplesPerPixel != 3 {
			return nil, fmt.Errorf("color jpeg for %d samples per pixel", info.SamplesPerPixel)
		}
		out := make([]byte, 0, info.FrameSize())
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.RGBAModel.Convert(m.At(x, y)).(color.RGBA)
				out = append(out, c.R, c.G, c.B)
			}
		}
		return &Frame{Data: out, PhotometricInterpretation: "RGB"}, nil
	default:
		return nil, fmt.Errorf("unsupported jpeg color model %T", img)
	}
}
