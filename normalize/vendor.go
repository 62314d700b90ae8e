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
	"strings"
	"unicode"

	"github.com/medbrief/dicom-normalizer/dicom"
)

// Vendor identifies the equipment manufacturer files come from.
type Vendor struct {
	Name string

	// Keywords are matched case-insensitively anywhere in the Manufacturer (0008,0070).
	Keywords []string

	// Tokens are matched case-insensitively against whole words of the Manufacturer. Short
	// abbreviations such as "GE" would otherwise match unrelated names.
	Tokens []string

	// UIDRoots are the roots of the vendor's Implementation Class UIDs.
	UIDRoots []string
}

var vendors = []Vendor{
	{
		Name:     "GE",
		Keywords: []string{"general electric", "ge healthcare", "ge medical", "gems"},
		Tokens:   []string{"ge"},
		UIDRoots: []string{"1.2.840.113619"},
	},
	{
		Name:     "Siemens",
		Keywords: []string{"siemens"},
		UIDRoots: []string{"1.3.12.2.1107"},
	},
	{
		Name:     "Philips",
		Keywords: []string{"philips"},
		UIDRoots: []string{"1.3.46.670589"},
	},
	{
		Name:     "Canon",
		Keywords: []string{"canon", "toshiba"},
		UIDRoots: []string{"1.2.392.200036.9116"},
	},
	{
		Name:     "Fujifilm",
		Keywords: []string{"fujifilm", "fuji photo"},
		Tokens:   []string{"fuji"},
		UIDRoots: []string{"1.2.392.200036.9125"},
	},
	{
		Name:     "Agfa",
		Keywords: []string{"agfa"},
		UIDRoots: []string{"1.3.51", "1.2.124.113532"},
	},
	{
		Name:     "Hologic",
		Keywords: []string{"hologic"},
		UIDRoots: []string{"1.2.840.113681"},
	},
}

// Vendors returns the known vendors.
func Vendors() []Vendor {
	return append([]Vendor(nil), vendors...)
}

// LookupVendor returns the known vendor called name, ignoring case.
func LookupVendor(name string) (Vendor, bool) {
	for _, v := range vendors {
		if strings.EqualFold(v.Name, name) {
			return v, true
		}
	}
	return Vendor{}, false
}

// LooksLike reports whether f appears to come from v, judging by its Manufacturer, decoded with
// the Specific Character Set of the data set, or by the Implementation Class UID of its file meta
// group.
func LooksLike(v Vendor, f *dicom.File) bool {
	manufacturer, _ := f.Body.DecodedString(dicom.ManufacturerTag)
	manufacturer = strings.ToLower(manufacturer)

	for _, keyword := range v.Keywords {
		if strings.Contains(manufacturer, keyword) {
			return true
		}
	}
	if len(v.Tokens) > 0 {
		words := strings.FieldsFunc(manufacturer, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, word := range words {
			for _, token := range v.Tokens {
				if word == token {
					return true
				}
			}
		}
	}

	implementation, _ := f.Meta.FirstString(dicom.ImplementationClassUIDTag)
	for _, root := range v.UIDRoots {
		if implementation == root || strings.HasPrefix(implementation, root+".") {
			return true
		}
	}
	return false
}
