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
	"github.com/medbrief/dicom-normalizer/dicom"
	"github.com/medbrief/dicom-normalizer/internal/uid"
)

const (
	// DefaultImplementationClassUID identifies files written by this package.
	DefaultImplementationClassUID = "1.2.826.0.1.3680043.10.743"

	// DefaultFallbackSOPClassUID is Secondary Capture Image Storage, used when the data set does
	// not name its SOP class.
	DefaultFallbackSOPClassUID = "1.2.840.10008.5.1.4.1.1.7"
)

// fileMetaVersion is the value of (0002,0001) defined in PS3.10 section 7.1.
var fileMetaVersion = [2]byte{0x00, 0x01}

// MetaConfig holds the organisation specific values of rebuilt file meta groups.
type MetaConfig struct {
	ImplementationClassUID string

	// ImplementationVersionName is written to (0002,0013) when not empty.
	ImplementationVersionName string

	FallbackSOPClassUID string

	// GenerateUID returns a new SOP Instance UID for data sets without one. It defaults to
	// UUID derived UIDs.
	GenerateUID func() string
}

// DefaultMetaConfig returns a MetaConfig using the package defaults.
func DefaultMetaConfig() MetaConfig {
	return MetaConfig{
		ImplementationClassUID: DefaultImplementationClassUID,
		FallbackSOPClassUID:    DefaultFallbackSOPClassUID,
		GenerateUID:            uid.Generate,
	}
}

// FileMeta is a complete file meta group.
type FileMeta struct {
	Version                    [2]byte
	MediaStorageSOPClassUID    string
	MediaStorageSOPInstanceUID string
	TransferSyntaxUID          string
	ImplementationClassUID     string
	ImplementationVersionName  string
}

// DataSet returns the elements of m. The group length is left to the writer.
func (m FileMeta) DataSet() *dicom.DataSet {
	version := []byte{m.Version[0], m.Version[1]}
	elements := map[dicom.DataElementTag]interface{}{
		dicom.FileMetaInformationVersionTag: dicom.NewBulkDataBuffer(version),
		dicom.MediaStorageSOPClassUIDTag:    []string{m.MediaStorageSOPClassUID},
		dicom.MediaStorageSOPInstanceUIDTag: []string{m.MediaStorageSOPInstanceUID},
		dicom.TransferSyntaxUIDTag:          []string{m.TransferSyntaxUID},
		dicom.ImplementationClassUIDTag:     []string{m.ImplementationClassUID},
	}
	if m.ImplementationVersionName != "" {
		elements[dicom.ImplementationVersionNameTag] = []string{m.ImplementationVersionName}
	}
	return dicom.NewDataSet(elements)
}

// MetaBuilder rebuilds file meta groups.
type MetaBuilder struct {
	cfg MetaConfig
}

// NewMetaBuilder returns a MetaBuilder for cfg. Empty fields of cfg take the package defaults,
// except ImplementationVersionName which stays optional.
func NewMetaBuilder(cfg MetaConfig) *MetaBuilder {
	def := DefaultMetaConfig()
	if cfg.ImplementationClassUID == "" {
		cfg.ImplementationClassUID = def.ImplementationClassUID
	}
	if cfg.FallbackSOPClassUID == "" {
		cfg.FallbackSOPClassUID = def.FallbackSOPClassUID
	}
	if cfg.GenerateUID == nil {
		cfg.GenerateUID = def.GenerateUID
	}
	return &MetaBuilder{cfg: cfg}
}

// Build returns the file meta group for body written with target. The SOP Class and SOP Instance
// UIDs of body are kept as they are; a missing SOP Class falls back to the configured class and a
// missing SOP Instance UID is generated anew on every call.
func (b *MetaBuilder) Build(body *dicom.DataSet, target TransferSyntax) FileMeta {
	classUID, _ := body.FirstString(dicom.SOPClassUIDTag)
	if classUID == "" {
		classUID = b.cfg.FallbackSOPClassUID
	}
	instanceUID, _ := body.FirstString(dicom.SOPInstanceUIDTag)
	if instanceUID == "" {
		instanceUID = b.cfg.GenerateUID()
	}

	return FileMeta{
		Version:                    fileMetaVersion,
		MediaStorageSOPClassUID:    classUID,
		MediaStorageSOPInstanceUID: instanceUID,
		TransferSyntaxUID:          target.UID,
		ImplementationClassUID:     b.cfg.ImplementationClassUID,
		ImplementationVersionName:  b.cfg.ImplementationVersionName,
	}
}
