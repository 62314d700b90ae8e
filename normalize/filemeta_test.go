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
	"reflect"
	"testing"

	"github.com/medbrief/dicom-normalizer/dicom"
	"github.com/medbrief/dicom-normalizer/internal/uid"
)

func TestMetaBuilder_Build(t *testing.T) {
	n := 0
	cfg := MetaConfig{
		ImplementationClassUID:    "1.2.3.999",
		ImplementationVersionName: "NORM_1",
		FallbackSOPClassUID:       "1.2.3.7",
		GenerateUID: func() string {
			n++
			return fmt.Sprintf("2.25.%d", n)
		},
	}

	tests := []struct {
		name string
		body map[dicom.DataElementTag]interface{}
		want FileMeta
	}{
		{
			name: "identifiers kept",
			body: imageBody(),
			want: FileMeta{
				Version:                    [2]byte{0x00, 0x01},
				MediaStorageSOPClassUID:    testSOPClassUID,
				MediaStorageSOPInstanceUID: testSOPInstanceUID,
				TransferSyntaxUID:          dicom.ExplicitVRLittleEndianUID,
				ImplementationClassUID:     "1.2.3.999",
				ImplementationVersionName:  "NORM_1",
			},
		},
		{
			name: "identifiers missing",
			body: map[dicom.DataElementTag]interface{}{dicom.ModalityTag: []string{"OT"}},
			want: FileMeta{
				Version:                    [2]byte{0x00, 0x01},
				MediaStorageSOPClassUID:    "1.2.3.7",
				MediaStorageSOPInstanceUID: "2.25.1",
				TransferSyntaxUID:          dicom.ExplicitVRLittleEndianUID,
				ImplementationClassUID:     "1.2.3.999",
				ImplementationVersionName:  "NORM_1",
			},
		},
		{
			name: "identifiers empty",
			body: map[dicom.DataElementTag]interface{}{
				dicom.SOPClassUIDTag:    []string{""},
				dicom.SOPInstanceUIDTag: []string{},
			},
			want: FileMeta{
				Version:                    [2]byte{0x00, 0x01},
				MediaStorageSOPClassUID:    "1.2.3.7",
				MediaStorageSOPInstanceUID: "2.25.2",
				TransferSyntaxUID:          dicom.ExplicitVRLittleEndianUID,
				ImplementationClassUID:     "1.2.3.999",
				ImplementationVersionName:  "NORM_1",
			},
		},
	}

	b := NewMetaBuilder(cfg)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := b.Build(dicom.NewDataSet(tc.body), ExplicitVRLittleEndian)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Build(_, _) = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestMetaBuilder_generatesFreshUIDs(t *testing.T) {
	b := NewMetaBuilder(MetaConfig{})
	body := dicom.NewDataSet(map[dicom.DataElementTag]interface{}{dicom.ModalityTag: []string{"OT"}})

	first := b.Build(body, ImplicitVRLittleEndian)
	second := b.Build(body, ImplicitVRLittleEndian)
	for _, m := range []FileMeta{first, second} {
		if !uid.Valid(m.MediaStorageSOPInstanceUID) {
			t.Fatalf("generated SOP Instance UID %q is not valid", m.MediaStorageSOPInstanceUID)
		}
	}
	if first.MediaStorageSOPInstanceUID == second.MediaStorageSOPInstanceUID {
		t.Fatalf("Build generated %q twice", first.MediaStorageSOPInstanceUID)
	}
	if first.ImplementationClassUID != DefaultImplementationClassUID || first.MediaStorageSOPClassUID != DefaultFallbackSOPClassUID {
		t.Fatalf("got %+v, want the default implementation and fallback class UIDs", first)
	}
}

func TestFileMeta_DataSet(t *testing.T) {
	m := FileMeta{
		Version:                    [2]byte{0x00, 0x01},
		MediaStorageSOPClassUID:    testSOPClassUID,
		MediaStorageSOPInstanceUID: testSOPInstanceUID,
		TransferSyntaxUID:          dicom.ImplicitVRLittleEndianUID,
		ImplementationClassUID:     DefaultImplementationClassUID,
	}

	ds := m.DataSet()
	wantTags := []dicom.DataElementTag{
		dicom.FileMetaInformationVersionTag,
		dicom.MediaStorageSOPClassUIDTag,
		dicom.MediaStorageSOPInstanceUIDTag,
		dicom.TransferSyntaxUIDTag,
		dicom.ImplementationClassUIDTag,
	}
	if got := ds.SortedTags(); !reflect.DeepEqual(got, wantTags) {
		t.Fatalf("got tags %v, want %v", got, wantTags)
	}
	version, _ := ds.Get(dicom.FileMetaInformationVersionTag)
	if got := version.ValueField.(*dicom.BulkDataBuffer).Bytes(); !reflect.DeepEqual(got, []byte{0x00, 0x01}) {
		t.Fatalf("got version %v, want [0 1]", got)
	}

	m.ImplementationVersionName = "NORM_1"
	if got, _ := m.DataSet().FirstString(dicom.ImplementationVersionNameTag); got != "NORM_1" {
		t.Fatalf("got implementation version name %q, want NORM_1", got)
	}
}
