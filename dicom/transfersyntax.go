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
)

// list of transfer syntaxes obtained from
// http://dicom.nema.org/medical/dicom/current/output/html/part06.html#chapter_A
const (
	// ImplicitVRLittleEndianUID is the Implicit VR Little Endian UID
	ImplicitVRLittleEndianUID = "1.2.840.10008.1.2"
	// ExplicitVRLittleEndianUID is the Explicit VR Little Endian UID
	ExplicitVRLittleEndianUID = "1.2.840.10008.1.2.1"
	// ExplicitVRBigEndianUID is the Explicit VR Big Endian UID
	ExplicitVRBigEndianUID = "1.2.840.10008.1.2.2"
	// DeflatedExplicitVRLittleEndianUID is the Deflated Explicit VR Little Endian UID
	DeflatedExplicitVRLittleEndianUID = "1.2.840.10008.1.2.1.99"
	// JPEGBaselineUID is the JPEG Baseline (Process 1) transfer syntax UID
	JPEGBaselineUID = "1.2.840.10008.1.2.4.50"
	// JPEGExtendedUID is the JPEG Extended (Process 2 & 4) transfer syntax UID
	JPEGExtendedUID = "1.2.840.10008.1.2.4.51"
	// JPEGLosslessNonHierarchicalUID is the JPEG Lossless, Non-Hierarchical (Process 14) UID
	JPEGLosslessNonHierarchicalUID = "1.2.840.10008.1.2.4.57"
	// JPEGLosslessSV1UID is the JPEG Lossless, Non-Hierarchical, First-Order Prediction UID
	JPEGLosslessSV1UID = "1.2.840.10008.1.2.4.70"
	// JPEGLSLosslessUID is the JPEG-LS Lossless Image Compression UID
	JPEGLSLosslessUID = "1.2.840.10008.1.2.4.80"
	// JPEGLSNearLosslessUID is the JPEG-LS Lossy (Near-Lossless) Image Compression UID
	JPEGLSNearLosslessUID = "1.2.840.10008.1.2.4.81"
	// JPEG2000LosslessUID is the JPEG 2000 Image Compression (Lossless Only) UID
	JPEG2000LosslessUID = "1.2.840.10008.1.2.4.90"
	// JPEG2000UID is the JPEG 2000 Image Compression UID
	JPEG2000UID = "1.2.840.10008.1.2.4.91"
	// JPEG2000Part2MulticomponentLosslessUID is the JPEG 2000 Part 2 Multi-component (Lossless Only) UID
	JPEG2000Part2MulticomponentLosslessUID = "1.2.840.10008.1.2.4.92"
	// JPEG2000Part2MulticomponentUID is the JPEG 2000 Part 2 Multi-component UID
	JPEG2000Part2MulticomponentUID = "1.2.840.10008.1.2.4.93"
	// HTJ2KLosslessUID is the High-Throughput JPEG 2000 (Lossless Only) UID
	HTJ2KLosslessUID = "1.2.840.10008.1.2.4.201"
	// HTJ2KLosslessRPCLUID is the High-Throughput JPEG 2000 with RPCL Options (Lossless Only) UID
	HTJ2KLosslessRPCLUID = "1.2.840.10008.1.2.4.202"
	// HTJ2KUID is the High-Throughput JPEG 2000 Image Compression UID
	HTJ2KUID = "1.2.840.10008.1.2.4.203"
	// JPIPReferencedUID is the JPIP Referenced UID
	JPIPReferencedUID = "1.2.840.10008.1.2.4.94"
	// JPIPReferencedDeflateUID is the JPIP Referenced Deflate UID
	JPIPReferencedDeflateUID = "1.2.840.10008.1.2.4.95"
	// MPEG2MainProfileUID is the MPEG2 Main Profile / Main Level UID
	MPEG2MainProfileUID = "1.2.840.10008.1.2.4.100"
	// MPEG4AVCH264HighProfileUID is the MPEG-4 AVC/H.264 High Profile / Level 4.1 UID
	MPEG4AVCH264HighProfileUID = "1.2.840.10008.1.2.4.102"
	// HEVCMainProfileUID is the HEVC/H.265 Main Profile / Level 5.1 UID
	HEVCMainProfileUID = "1.2.840.10008.1.2.4.107"
	// RLELosslessUID is the RLE Lossless UID
	RLELosslessUID = "1.2.840.10008.1.2.5"
)

// TransferSyntax describes an entry of the transfer syntax registry.
type TransferSyntax struct {
	UID  string
	Name string

	// Encapsulated is true when Pixel Data is stored compressed in the encapsulated format.
	// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4
	Encapsulated bool

	// Lossy is true when the compression process may discard information.
	Lossy bool
}

var transferSyntaxes = map[string]TransferSyntax{}

func registerSyntax(uid, name string, encapsulated, lossy bool) TransferSyntax {
	ts := TransferSyntax{uid, name, encapsulated, lossy}
	transferSyntaxes[uid] = ts
	return ts
}

func init() {
	registerSyntax(ImplicitVRLittleEndianUID, "Implicit VR Little Endian", false, false)
	registerSyntax(ExplicitVRLittleEndianUID, "Explicit VR Little Endian", false, false)
	registerSyntax(ExplicitVRBigEndianUID, "Explicit VR Big Endian", false, false)
	registerSyntax(DeflatedExplicitVRLittleEndianUID, "Deflated Explicit VR Little Endian", false, false)
	registerSyntax(JPEGBaselineUID, "JPEG Baseline (Process 1)", true, true)
	registerSyntax(JPEGExtendedUID, "JPEG Extended (Process 2 & 4)", true, true)
	registerSyntax(JPEGLosslessNonHierarchicalUID, "JPEG Lossless, Non-Hierarchical (Process 14)", true, false)
	registerSyntax(JPEGLosslessSV1UID, "JPEG Lossless, Non-Hierarchical, First-Order Prediction", true, false)
	registerSyntax(JPEGLSLosslessUID, "JPEG-LS Lossless Image Compression", true, false)
	registerSyntax(JPEGLSNearLosslessUID, "JPEG-LS Lossy (Near-Lossless) Image Compression", true, true)
	registerSyntax(JPEG2000LosslessUID, "JPEG 2000 Image Compression (Lossless Only)", true, false)
	registerSyntax(JPEG2000UID, "JPEG 2000 Image Compression", true, true)
	registerSyntax(JPEG2000Part2MulticomponentLosslessUID, "JPEG 2000 Part 2 Multi-component Image Compression (Lossless Only)", true, false)
	registerSyntax(JPEG2000Part2MulticomponentUID, "JPEG 2000 Part 2 Multi-component Image Compression", true, true)
	registerSyntax(HTJ2KLosslessUID, "High-Throughput JPEG 2000 Image Compression (Lossless Only)", true, false)
	registerSyntax(HTJ2KLosslessRPCLUID, "High-Throughput JPEG 2000 with RPCL Options Image Compression (Lossless Only)", true, false)
	registerSyntax(HTJ2KUID, "High-Throughput JPEG 2000 Image Compression", true, true)
	registerSyntax(JPIPReferencedUID, "JPIP Referenced", true, false)
	registerSyntax(JPIPReferencedDeflateUID, "JPIP Referenced Deflate", true, false)
	registerSyntax(MPEG2MainProfileUID, "MPEG2 Main Profile / Main Level", true, true)
	registerSyntax(MPEG4AVCH264HighProfileUID, "MPEG-4 AVC/H.264 High Profile / Level 4.1", true, true)
	registerSyntax(HEVCMainProfileUID, "HEVC/H.265 Main Profile / Level 5.1", true, true)
	registerSyntax(RLELosslessUID, "RLE Lossless", true, false)
}

// LookupTransferSyntax returns the registry entry for uid. ok is false for UIDs that are not
// transfer syntaxes known to this package.
func LookupTransferSyntax(uid string) (ts TransferSyntax, ok bool) {
	ts, ok = transferSyntaxes[uid]
	return ts, ok
}

// Encoding describes how the Data Elements of a Data Set are laid out in a byte stream: the byte
// order, whether the VR is written alongside each element and whether the stream is deflated.
type Encoding struct {
	ByteOrder binary.ByteOrder
	Implicit  bool
	Deflated  bool
}

// Encodings of the uncompressed transfer syntaxes. Every other syntax, including all encapsulated
// ones, uses ExplicitVRLittleEndian for its Data Elements.
var (
	ExplicitVRLittleEndian         = Encoding{binary.LittleEndian, false, false}
	ImplicitVRLittleEndian         = Encoding{binary.LittleEndian, true, false}
	ExplicitVRBigEndian            = Encoding{binary.BigEndian, false, false}
	DeflatedExplicitVRLittleEndian = Encoding{binary.LittleEndian, false, true}

	// unexported aliases used throughout the reader and writer
	explicitVRLittleEndian         = ExplicitVRLittleEndian
	implicitVRLittleEndian         = ImplicitVRLittleEndian
	explicitVRBigEndian            = ExplicitVRBigEndian
	deflatedExplicitVRLittleEndian = DeflatedExplicitVRLittleEndian
)

// EncodingForSyntax returns the Encoding used by the Data Elements of a transfer syntax.
func EncodingForSyntax(uid string) Encoding {
	switch uid {
	case ExplicitVRLittleEndianUID:
		return explicitVRLittleEndian
	case ImplicitVRLittleEndianUID:
		return implicitVRLittleEndian
	case ExplicitVRBigEndianUID:
		return explicitVRBigEndian
	case DeflatedExplicitVRLittleEndianUID:
		return deflatedExplicitVRLittleEndian
	}

	// any other syntax should be explicit VR little endian according to PS3.5 A.4
	// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_A.4
	return explicitVRLittleEndian
}

// LittleEndian reports whether multi-byte values are little endian.
func (e Encoding) LittleEndian() bool {
	return e.ByteOrder == binary.LittleEndian
}

func (e Encoding) String() string {
	vr := "Explicit"
	if e.Implicit {
		vr = "Implicit"
	}
	order := "Little"
	if !e.LittleEndian() {
		order = "Big"
	}
	s := fmt.Sprintf("%s VR %s Endian", vr, order)
	if e.Deflated {
		s = "Deflated " + s
	}
	return s
}

const (
	vrSize  = 2
	tagSize = 4
)

func (e Encoding) elementSize(vr *VR, valueFieldLength uint32) uint32 {
	if valueFieldLength == UndefinedLength {
		return UndefinedLength
	}
	if e.Implicit {
		return tagSize + 4 /*length*/ + valueFieldLength
	}
	if vr.has32BitLength() {
		return tagSize + vrSize + 2 /*reserved*/ + 4 /*32-bit length*/ + valueFieldLength
	}
	return tagSize + vrSize + 2 /*16-bit length*/ + valueFieldLength
}

func (e Encoding) readVR(dr *dcmReader, tag DataElementTag) (*VR, error) {
	if e.Implicit {
		return tag.DictionaryVR(), nil
	}

	vrString, err := dr.String(vrSize)
	if err != nil {
		return nil, fmt.Errorf("getting vr %v", vrString)
	}

	return lookupVRByName(vrString)
}

func (e Encoding) readValueLength(dr *dcmReader, vr *VR) (uint32, error) {
	if e.Implicit {
		return dr.UInt32(e.ByteOrder)
	}

	if vr.has32BitLength() {
		if _, err := dr.UInt16(e.ByteOrder); err != nil {
			return 0, fmt.Errorf("reading reserved field %v", err)
		}

		length, err := dr.UInt32(e.ByteOrder)
		if err != nil {
			return 0, fmt.Errorf("reading 32 bit length: %v", err)
		}
		return length, nil
	}

	length, err := dr.UInt16(e.ByteOrder)
	if err != nil {
		return 0, fmt.Errorf("reading 16 bit length: %v", err)
	}
	return uint32(length), nil
}
