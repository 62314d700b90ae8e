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
	"testing"

	"github.com/medbrief/dicom-normalizer/dicom"
)

func TestLooksLike(t *testing.T) {
	vendorFile := func(manufacturer, implementation string) *dicom.File {
		f := dicom.NewFile(dicom.ExplicitVRLittleEndian)
		if manufacturer != "" {
			f.Body.Add(&dicom.DataElement{Tag: dicom.ManufacturerTag, VR: dicom.LOVR, ValueField: []string{manufacturer}})
		}
		if implementation != "" {
			f.Meta.Add(&dicom.DataElement{Tag: dicom.ImplementationClassUIDTag, VR: dicom.UIVR, ValueField: []string{implementation}})
		}
		return f
	}

	tests := []struct {
		name           string
		vendor         string
		manufacturer   string
		implementation string
		want           bool
	}{
		{"ge manufacturer", "GE", "GE MEDICAL SYSTEMS", "", true},
		{"ge healthcare", "ge", "GE Healthcare", "", true},
		{"ge implementation", "GE", "", "1.2.840.113619.6.374", true},
		{"ge implementation sibling root", "GE", "", "1.2.840.1136190.1", false},
		{"ge inside a word", "GE", "Agfa-Gevaert", "", false},
		{"siemens for ge", "GE", "SIEMENS", "1.3.12.2.1107.5.2", false},
		{"siemens", "Siemens", "Siemens Healthineers", "", true},
		{"siemens implementation", "Siemens", "", "1.3.12.2.1107.5.2", true},
		{"philips", "Philips", "Philips Medical Systems", "", true},
		{"toshiba", "Canon", "TOSHIBA_MEC", "", true},
		{"fuji", "Fujifilm", "FUJI PHOTO FILM Co., ltd.", "", true},
		{"agfa", "Agfa", "Agfa-Gevaert", "", true},
		{"hologic", "Hologic", "HOLOGIC, Inc.", "", true},
		{"nothing", "Hologic", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, ok := LookupVendor(tc.vendor)
			if !ok {
				t.Fatalf("LookupVendor(%q) found nothing", tc.vendor)
			}
			if got := LooksLike(v, vendorFile(tc.manufacturer, tc.implementation)); got != tc.want {
				t.Fatalf("LooksLike(%s, %q / %q) = %v, want %v", v.Name, tc.manufacturer, tc.implementation, got, tc.want)
			}
		})
	}
}

func TestLooksLike_specificCharacterSet(t *testing.T) {
	f := dicom.NewFile(dicom.ExplicitVRLittleEndian)
	f.Body = dicom.NewDataSet(map[dicom.DataElementTag]interface{}{
		dicom.SpecificCharacterSetTag: []string{"ISO_IR 100"},
		// "Röntgen Siemens" in ISO 8859-1
		dicom.ManufacturerTag: []string{"R\xf6ntgen Siemens"},
	})

	v, _ := LookupVendor("siemens")
	if !LooksLike(v, f) {
		t.Fatal("LooksLike(Siemens, _) = false, want true")
	}
}

func TestLookupVendor(t *testing.T) {
	if _, ok := LookupVendor("acme"); ok {
		t.Fatal("LookupVendor(acme) found a vendor")
	}
	for _, v := range Vendors() {
		if got, ok := LookupVendor(v.Name); !ok || got.Name != v.Name {
			t.Fatalf("LookupVendor(%q) = %v, %v", v.Name, got.Name, ok)
		}
	}
}
