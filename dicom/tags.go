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

// Subset of the DICOM Data Dictionary
// http://dicom.nema.org/medical/dicom/current/output/html/part06.html#chapter_6
// covering the file meta group, the identifying and image pixel modules and the elements that
// commonly appear in implicit VR files. Tags missing from the dictionary decode as UN.
const (
	FileMetaInformationGroupLengthTag DataElementTag = 0x00020000
	FileMetaInformationVersionTag     DataElementTag = 0x00020001
	MediaStorageSOPClassUIDTag        DataElementTag = 0x00020002
	MediaStorageSOPInstanceUIDTag     DataElementTag = 0x00020003
	TransferSyntaxUIDTag              DataElementTag = 0x00020010
	ImplementationClassUIDTag         DataElementTag = 0x00020012
	ImplementationVersionNameTag      DataElementTag = 0x00020013
	SourceApplicationEntityTitleTag   DataElementTag = 0x00020016
	PrivateInformationCreatorUIDTag   DataElementTag = 0x00020100
	PrivateInformationTag             DataElementTag = 0x00020102

	SpecificCharacterSetTag             DataElementTag = 0x00080005
	ImageTypeTag                        DataElementTag = 0x00080008
	InstanceCreationDateTag             DataElementTag = 0x00080012
	InstanceCreationTimeTag             DataElementTag = 0x00080013
	SOPClassUIDTag                      DataElementTag = 0x00080016
	SOPInstanceUIDTag                   DataElementTag = 0x00080018
	StudyDateTag                        DataElementTag = 0x00080020
	SeriesDateTag                       DataElementTag = 0x00080021
	AcquisitionDateTag                  DataElementTag = 0x00080022
	ContentDateTag                      DataElementTag = 0x00080023
	StudyTimeTag                        DataElementTag = 0x00080030
	SeriesTimeTag                       DataElementTag = 0x00080031
	AcquisitionTimeTag                  DataElementTag = 0x00080032
	ContentTimeTag                      DataElementTag = 0x00080033
	AccessionNumberTag                  DataElementTag = 0x00080050
	ModalityTag                         DataElementTag = 0x00080060
	ConversionTypeTag                   DataElementTag = 0x00080064
	ManufacturerTag                     DataElementTag = 0x00080070
	InstitutionNameTag                  DataElementTag = 0x00080080
	ReferringPhysicianNameTag           DataElementTag = 0x00080090
	StationNameTag                      DataElementTag = 0x00081010
	StudyDescriptionTag                 DataElementTag = 0x00081030
	SeriesDescriptionTag                DataElementTag = 0x0008103E
	ManufacturerModelNameTag            DataElementTag = 0x00081090
	ReferencedStudySequenceTag          DataElementTag = 0x00081110
	ReferencedSeriesSequenceTag         DataElementTag = 0x00081115
	ReferencedImageSequenceTag          DataElementTag = 0x00081140
	ReferencedSOPClassUIDTag            DataElementTag = 0x00081150
	ReferencedSOPInstanceUIDTag         DataElementTag = 0x00081155
	ReferencedFrameNumberTag            DataElementTag = 0x00081160
	SimpleFrameListTag                  DataElementTag = 0x00081161
	DerivationDescriptionTag            DataElementTag = 0x00082111
	SourceImageSequenceTag              DataElementTag = 0x00082112
	IrradiationEventUIDTag              DataElementTag = 0x00083010
	PatientNameTag                      DataElementTag = 0x00100010
	PatientIDTag                        DataElementTag = 0x00100020
	PatientBirthDateTag                 DataElementTag = 0x00100030
	PatientSexTag                       DataElementTag = 0x00100040
	PatientAgeTag                       DataElementTag = 0x00101010
	PatientWeightTag                    DataElementTag = 0x00101030
	BodyPartExaminedTag                 DataElementTag = 0x00180015
	SliceThicknessTag                   DataElementTag = 0x00180050
	KVPTag                              DataElementTag = 0x00180060
	SpacingBetweenSlicesTag             DataElementTag = 0x00180088
	DeviceSerialNumberTag               DataElementTag = 0x00181000
	SoftwareVersionsTag                 DataElementTag = 0x00181020
	ProtocolNameTag                     DataElementTag = 0x00181030
	PatientPositionTag                  DataElementTag = 0x00185100
	StudyInstanceUIDTag                 DataElementTag = 0x0020000D
	SeriesInstanceUIDTag                DataElementTag = 0x0020000E
	StudyIDTag                          DataElementTag = 0x00200010
	SeriesNumberTag                     DataElementTag = 0x00200011
	AcquisitionNumberTag                DataElementTag = 0x00200012
	InstanceNumberTag                   DataElementTag = 0x00200013
	ImagePositionPatientTag             DataElementTag = 0x00200032
	ImageOrientationPatientTag          DataElementTag = 0x00200037
	FrameOfReferenceUIDTag              DataElementTag = 0x00200052
	SliceLocationTag                    DataElementTag = 0x00201041
	SamplesPerPixelTag                  DataElementTag = 0x00280002
	PhotometricInterpretationTag        DataElementTag = 0x00280004
	PlanarConfigurationTag              DataElementTag = 0x00280006
	NumberOfFramesTag                   DataElementTag = 0x00280008
	FrameIncrementPointerTag            DataElementTag = 0x00280009
	RowsTag                             DataElementTag = 0x00280010
	ColumnsTag                          DataElementTag = 0x00280011
	PixelSpacingTag                     DataElementTag = 0x00280030
	BitsAllocatedTag                    DataElementTag = 0x00280100
	BitsStoredTag                       DataElementTag = 0x00280101
	HighBitTag                          DataElementTag = 0x00280102
	PixelRepresentationTag              DataElementTag = 0x00280103
	SmallestImagePixelValueTag          DataElementTag = 0x00280106
	LargestImagePixelValueTag           DataElementTag = 0x00280107
	WindowCenterTag                     DataElementTag = 0x00281050
	WindowWidthTag                      DataElementTag = 0x00281051
	RescaleInterceptTag                 DataElementTag = 0x00281052
	RescaleSlopeTag                     DataElementTag = 0x00281053
	RescaleTypeTag                      DataElementTag = 0x00281054
	GrayLookupTableDataTag              DataElementTag = 0x00281200
	RedPaletteColorLookupTableDataTag   DataElementTag = 0x00281201
	GreenPaletteColorLookupTableDataTag DataElementTag = 0x00281202
	BluePaletteColorLookupTableDataTag  DataElementTag = 0x00281203
	LossyImageCompressionTag            DataElementTag = 0x00282110
	LossyImageCompressionRatioTag       DataElementTag = 0x00282112
	LossyImageCompressionMethodTag      DataElementTag = 0x00282114
	TransformLabelTag                   DataElementTag = 0x00287FE0
	RequestAttributesSequenceTag        DataElementTag = 0x00400275
	MACParametersSequenceTag            DataElementTag = 0x4FFEFFFE
	CurveDataTag                        DataElementTag = 0x50003000
	AudioSampleDataTag                  DataElementTag = 0x50002000
	OverlayRowsTag                      DataElementTag = 0x60000010
	OverlayColumnsTag                   DataElementTag = 0x60000011
	OverlayTypeTag                      DataElementTag = 0x60000040
	OverlayOriginTag                    DataElementTag = 0x60000050
	OverlayBitsAllocatedTag             DataElementTag = 0x60000100
	OverlayBitPositionTag               DataElementTag = 0x60000102
	OverlayDataTag                      DataElementTag = 0x60003000
	SpectroscopyDataTag                 DataElementTag = 0x56000020
	EncapsulatedDocumentTag             DataElementTag = 0x00420011
	WaveformDataTag                     DataElementTag = 0x54001010
	FloatPixelDataTag                   DataElementTag = 0x7FE00008
	DoubleFloatPixelDataTag             DataElementTag = 0x7FE00009
	PixelDataTag                        DataElementTag = 0x7FE00010
	DataSetTrailingPaddingTag           DataElementTag = 0xFFFCFFFC

	ItemTag                     DataElementTag = 0xFFFEE000
	ItemDelimitationItemTag     DataElementTag = 0xFFFEE00D
	SequenceDelimitationItemTag DataElementTag = 0xFFFEE0DD
)

type dictionaryEntry struct {
	keyword string
	vr      *VR
}

// When an attribute permits more than one VR (e.g. "US or SS", "OB or OW") the last VR listed in
// the standard is used, matching the convention of the implicit VR readers in the wild.
var dictionary = map[DataElementTag]dictionaryEntry{
	FileMetaInformationGroupLengthTag: {"FileMetaInformationGroupLength", ULVR},
	FileMetaInformationVersionTag:     {"FileMetaInformationVersion", OBVR},
	MediaStorageSOPClassUIDTag:        {"MediaStorageSOPClassUID", UIVR},
	MediaStorageSOPInstanceUIDTag:     {"MediaStorageSOPInstanceUID", UIVR},
	TransferSyntaxUIDTag:              {"TransferSyntaxUID", UIVR},
	ImplementationClassUIDTag:         {"ImplementationClassUID", UIVR},
	ImplementationVersionNameTag:      {"ImplementationVersionName", SHVR},
	SourceApplicationEntityTitleTag:   {"SourceApplicationEntityTitle", AEVR},
	PrivateInformationCreatorUIDTag:   {"PrivateInformationCreatorUID", UIVR},
	PrivateInformationTag:             {"PrivateInformation", OBVR},

	SpecificCharacterSetTag:             {"SpecificCharacterSet", CSVR},
	ImageTypeTag:                        {"ImageType", CSVR},
	InstanceCreationDateTag:             {"InstanceCreationDate", DAVR},
	InstanceCreationTimeTag:             {"InstanceCreationTime", TMVR},
	SOPClassUIDTag:                      {"SOPClassUID", UIVR},
	SOPInstanceUIDTag:                   {"SOPInstanceUID", UIVR},
	StudyDateTag:                        {"StudyDate", DAVR},
	SeriesDateTag:                       {"SeriesDate", DAVR},
	AcquisitionDateTag:                  {"AcquisitionDate", DAVR},
	ContentDateTag:                      {"ContentDate", DAVR},
	StudyTimeTag:                        {"StudyTime", TMVR},
	SeriesTimeTag:                       {"SeriesTime", TMVR},
	AcquisitionTimeTag:                  {"AcquisitionTime", TMVR},
	ContentTimeTag:                      {"ContentTime", TMVR},
	AccessionNumberTag:                  {"AccessionNumber", SHVR},
	ModalityTag:                         {"Modality", CSVR},
	ConversionTypeTag:                   {"ConversionType", CSVR},
	ManufacturerTag:                     {"Manufacturer", LOVR},
	InstitutionNameTag:                  {"InstitutionName", LOVR},
	ReferringPhysicianNameTag:           {"ReferringPhysicianName", PNVR},
	StationNameTag:                      {"StationName", SHVR},
	StudyDescriptionTag:                 {"StudyDescription", LOVR},
	SeriesDescriptionTag:                {"SeriesDescription", LOVR},
	ManufacturerModelNameTag:            {"ManufacturerModelName", LOVR},
	ReferencedStudySequenceTag:          {"ReferencedStudySequence", SQVR},
	ReferencedSeriesSequenceTag:         {"ReferencedSeriesSequence", SQVR},
	ReferencedImageSequenceTag:          {"ReferencedImageSequence", SQVR},
	ReferencedSOPClassUIDTag:            {"ReferencedSOPClassUID", UIVR},
	ReferencedSOPInstanceUIDTag:         {"ReferencedSOPInstanceUID", UIVR},
	ReferencedFrameNumberTag:            {"ReferencedFrameNumber", ISVR},
	SimpleFrameListTag:                  {"SimpleFrameList", ULVR},
	DerivationDescriptionTag:            {"DerivationDescription", STVR},
	SourceImageSequenceTag:              {"SourceImageSequence", SQVR},
	IrradiationEventUIDTag:              {"IrradiationEventUID", UIVR},
	PatientNameTag:                      {"PatientName", PNVR},
	PatientIDTag:                        {"PatientID", LOVR},
	PatientBirthDateTag:                 {"PatientBirthDate", DAVR},
	PatientSexTag:                       {"PatientSex", CSVR},
	PatientAgeTag:                       {"PatientAge", ASVR},
	PatientWeightTag:                    {"PatientWeight", DSVR},
	BodyPartExaminedTag:                 {"BodyPartExamined", CSVR},
	SliceThicknessTag:                   {"SliceThickness", DSVR},
	KVPTag:                              {"KVP", DSVR},
	SpacingBetweenSlicesTag:             {"SpacingBetweenSlices", DSVR},
	DeviceSerialNumberTag:               {"DeviceSerialNumber", LOVR},
	SoftwareVersionsTag:                 {"SoftwareVersions", LOVR},
	ProtocolNameTag:                     {"ProtocolName", LOVR},
	PatientPositionTag:                  {"PatientPosition", CSVR},
	StudyInstanceUIDTag:                 {"StudyInstanceUID", UIVR},
	SeriesInstanceUIDTag:                {"SeriesInstanceUID", UIVR},
	StudyIDTag:                          {"StudyID", SHVR},
	SeriesNumberTag:                     {"SeriesNumber", ISVR},
	AcquisitionNumberTag:                {"AcquisitionNumber", ISVR},
	InstanceNumberTag:                   {"InstanceNumber", ISVR},
	ImagePositionPatientTag:             {"ImagePositionPatient", DSVR},
	ImageOrientationPatientTag:          {"ImageOrientationPatient", DSVR},
	FrameOfReferenceUIDTag:              {"FrameOfReferenceUID", UIVR},
	SliceLocationTag:                    {"SliceLocation", DSVR},
	SamplesPerPixelTag:                  {"SamplesPerPixel", USVR},
	PhotometricInterpretationTag:        {"PhotometricInterpretation", CSVR},
	PlanarConfigurationTag:              {"PlanarConfiguration", USVR},
	NumberOfFramesTag:                   {"NumberOfFrames", ISVR},
	FrameIncrementPointerTag:            {"FrameIncrementPointer", ATVR},
	RowsTag:                             {"Rows", USVR},
	ColumnsTag:                          {"Columns", USVR},
	PixelSpacingTag:                     {"PixelSpacing", DSVR},
	BitsAllocatedTag:                    {"BitsAllocated", USVR},
	BitsStoredTag:                       {"BitsStored", USVR},
	HighBitTag:                          {"HighBit", USVR},
	PixelRepresentationTag:              {"PixelRepresentation", USVR},
	SmallestImagePixelValueTag:          {"SmallestImagePixelValue", SSVR},
	LargestImagePixelValueTag:           {"LargestImagePixelValue", SSVR},
	WindowCenterTag:                     {"WindowCenter", DSVR},
	WindowWidthTag:                      {"WindowWidth", DSVR},
	RescaleInterceptTag:                 {"RescaleIntercept", DSVR},
	RescaleSlopeTag:                     {"RescaleSlope", DSVR},
	RescaleTypeTag:                      {"RescaleType", LOVR},
	GrayLookupTableDataTag:              {"GrayLookupTableData", OWVR},
	RedPaletteColorLookupTableDataTag:   {"RedPaletteColorLookupTableData", OWVR},
	GreenPaletteColorLookupTableDataTag: {"GreenPaletteColorLookupTableData", OWVR},
	BluePaletteColorLookupTableDataTag:  {"BluePaletteColorLookupTableData", OWVR},
	LossyImageCompressionTag:            {"LossyImageCompression", CSVR},
	LossyImageCompressionRatioTag:       {"LossyImageCompressionRatio", DSVR},
	LossyImageCompressionMethodTag:      {"LossyImageCompressionMethod", CSVR},
	TransformLabelTag:                   {"TransformLabel", LOVR},
	RequestAttributesSequenceTag:        {"RequestAttributesSequence", SQVR},
	MACParametersSequenceTag:            {"MACParametersSequence", SQVR},
	SpectroscopyDataTag:                 {"SpectroscopyData", OFVR},
	EncapsulatedDocumentTag:             {"EncapsulatedDocument", OBVR},
	WaveformDataTag:                     {"WaveformData", OWVR},
	FloatPixelDataTag:                   {"FloatPixelData", OFVR},
	DoubleFloatPixelDataTag:             {"DoubleFloatPixelData", ODVR},
	PixelDataTag:                        {"PixelData", OWVR},
	DataSetTrailingPaddingTag:           {"DataSetTrailingPadding", OBVR},
}

// repeatingGroupDictionary holds the (50xx,eeee) and (60xx,eeee) entries keyed by the tag with
// the xx digits set to 0.
var repeatingGroupDictionary = map[DataElementTag]dictionaryEntry{
	CurveDataTag:            {"CurveData", OBVR},
	AudioSampleDataTag:      {"AudioSampleData", OBVR},
	0x50002610:              {"CurveRange", USVR},
	OverlayRowsTag:          {"OverlayRows", USVR},
	OverlayColumnsTag:       {"OverlayColumns", USVR},
	OverlayTypeTag:          {"OverlayType", CSVR},
	OverlayOriginTag:        {"OverlayOrigin", SSVR},
	OverlayBitsAllocatedTag: {"OverlayBitsAllocated", USVR},
	OverlayBitPositionTag:   {"OverlayBitPosition", USVR},
	OverlayDataTag:          {"OverlayData", OWVR},
}

func (t DataElementTag) lookup() (dictionaryEntry, bool) {
	if entry, ok := dictionary[t]; ok {
		return entry, true
	}
	switch t.GroupNumber() & 0xFF00 {
	case 0x5000, 0x6000:
		if t.GroupNumber()%2 == 0 {
			entry, ok := repeatingGroupDictionary[t&0xFF00FFFF]
			return entry, ok
		}
	}
	return dictionaryEntry{}, false
}

// DictionaryVR returns the VR of the tag as listed in the DICOM Data Dictionary. Group length
// elements (gggg,0000) are UL, private creator elements (gggg,0010-00FF) with gggg odd are LO and
// anything not found in the dictionary is UN.
func (t DataElementTag) DictionaryVR() *VR {
	if t.ElementNumber() == 0x0000 {
		return ULVR
	}
	if t.IsPrivate() {
		if t.ElementNumber() >= 0x0010 && t.ElementNumber() <= 0x00FF {
			return LOVR
		}
		return UNVR
	}
	if entry, ok := t.lookup(); ok {
		return entry.vr
	}
	return UNVR
}

// Keyword returns the dictionary keyword of the tag, or the empty string when the tag is not in
// the dictionary.
func (t DataElementTag) Keyword() string {
	if entry, ok := t.lookup(); ok {
		return entry.keyword
	}
	return ""
}
