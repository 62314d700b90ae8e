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
	"fmt"
	"strings"

	"github.com/medbrief/dicom-normalizer/dicom"
	"github.com/medbrief/dicom-normalizer/internal/uid"
)

// Kind classifies a transfer syntax by the way it encodes the data set.
type Kind int

const (
	// KindUnknown is a syntactically valid UID that is not a registered transfer syntax.
	KindUnknown Kind = iota
	KindExplicitVRLittleEndian
	KindImplicitVRLittleEndian
	// KindOtherExplicit covers the remaining native syntaxes with explicit VR: Explicit VR Big
	// Endian and Deflated Explicit VR Little Endian.
	KindOtherExplicit
	// KindOtherImplicit is an implicit VR syntax other than Implicit VR Little Endian. No
	// registered syntax has this kind today.
	KindOtherImplicit
	// KindCompressed is a syntax storing pixel data in the encapsulated format.
	KindCompressed
)

func (k Kind) String() string {
	switch k {
	case KindExplicitVRLittleEndian:
		return "explicit-vr-little-endian"
	case KindImplicitVRLittleEndian:
		return "implicit-vr-little-endian"
	case KindOtherExplicit:
		return "other-explicit"
	case KindOtherImplicit:
		return "other-implicit"
	case KindCompressed:
		return "compressed"
	default:
		return "unknown"
	}
}

// TransferSyntax is a transfer syntax UID and its classification.
type TransferSyntax struct {
	UID  string
	Kind Kind
}

var (
	ExplicitVRLittleEndian = TransferSyntax{dicom.ExplicitVRLittleEndianUID, KindExplicitVRLittleEndian}
	ImplicitVRLittleEndian = TransferSyntax{dicom.ImplicitVRLittleEndianUID, KindImplicitVRLittleEndian}
)

// ParseTransferSyntax validates s as a UID and classifies it. Trailing padding is ignored.
func ParseTransferSyntax(s string) (TransferSyntax, error) {
	s = strings.TrimRight(s, "\x00 ")
	if !uid.Valid(s) {
		return TransferSyntax{}, fmt.Errorf("invalid transfer syntax UID %q", s)
	}
	return TransferSyntax{UID: s, Kind: kindOf(s)}, nil
}

func kindOf(s string) Kind {
	ts, ok := dicom.LookupTransferSyntax(s)
	switch {
	case !ok:
		return KindUnknown
	case ts.Encapsulated:
		return KindCompressed
	case s == dicom.ExplicitVRLittleEndianUID:
		return KindExplicitVRLittleEndian
	case s == dicom.ImplicitVRLittleEndianUID:
		return KindImplicitVRLittleEndian
	case dicom.EncodingForSyntax(s).Implicit:
		return KindOtherImplicit
	default:
		return KindOtherExplicit
	}
}

// Compressed reports whether pixel data of this syntax is encapsulated.
func (ts TransferSyntax) Compressed() bool {
	return ts.Kind == KindCompressed
}

// Encoding returns the encoding of data sets written with this syntax.
func (ts TransferSyntax) Encoding() dicom.Encoding {
	return dicom.EncodingForSyntax(ts.UID)
}

func (ts TransferSyntax) String() string {
	if known, ok := dicom.LookupTransferSyntax(ts.UID); ok {
		return fmt.Sprintf("%s (%s)", ts.UID, known.Name)
	}
	return ts.UID
}

// Classification is what the file meta group of an input says about its encoding.
type Classification struct {
	// SelfDescribing is true when the file carries file meta information with a transfer syntax.
	SelfDescribing bool

	// Declared is the declared transfer syntax. It is nil when the file is not self-describing or
	// the declared UID is malformed.
	Declared *TransferSyntax
}

// Classify inspects the file meta group of f. A Transfer Syntax UID element makes the file
// self-describing even when its value is empty.
func Classify(f *dicom.File) Classification {
	if _, ok := f.Meta.Get(dicom.TransferSyntaxUIDTag); !ok {
		return Classification{}
	}

	c := Classification{SelfDescribing: true}
	declared, _ := f.Meta.FirstString(dicom.TransferSyntaxUIDTag)
	if ts, err := ParseTransferSyntax(declared); err == nil {
		c.Declared = &ts
	}
	return c
}

// SelectTargetSyntax chooses the transfer syntax of the output. Decompressed pixel data is always
// written as Explicit VR Little Endian; otherwise a declared syntax is kept, and undeclared input
// defaults to Implicit VR Little Endian.
func SelectTargetSyntax(declared *TransferSyntax, decompressed bool) TransferSyntax {
	switch {
	case decompressed:
		return ExplicitVRLittleEndian
	case declared != nil:
		return *declared
	default:
		return ImplicitVRLittleEndian
	}
}
