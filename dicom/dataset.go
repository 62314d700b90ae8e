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
	"fmt"
	"sort"
	"strings"
)

// DataElementTag is a unique identifier for a Data Element composed of an unordered pair
// of numbers called the group number and the element number as specified in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10.
//
// The least significant 16 bits is the element number. The most significant 16 bits is the group
// number.
type DataElementTag uint32

// NewTag returns the DataElementTag (group,element).
func NewTag(group, element uint16) DataElementTag {
	return DataElementTag(uint32(group)<<16 | uint32(element))
}

// GroupNumber returns the group number component of the DataElementTag
func (t DataElementTag) GroupNumber() uint16 {
	return uint16(t >> 16)
}

// ElementNumber returns the element number component of the DataElementTag
func (t DataElementTag) ElementNumber() uint16 {
	return uint16(t & 0xFFFF)
}

// IsMetaElement is true if and only if the Data Element is a file meta element
func (t DataElementTag) IsMetaElement() bool {
	return t.GroupNumber() == uint16(0x0002)
}

// IsPrivate is true if and only if the tag belongs to a private group. Private groups have an odd
// group number as specified in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.8.1
func (t DataElementTag) IsPrivate() bool {
	return t.GroupNumber()%2 == 1
}

// String returns the tag in the conventional (gggg,eeee) form.
func (t DataElementTag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.GroupNumber(), t.ElementNumber())
}

// DataElement models a DICOM Data Element as defined in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10
type DataElement struct {
	Tag DataElementTag

	// Value Representation
	VR *VR

	// ValueField represents the field within a Data Element that contains its value(s)
	// Can be any of of the following types:
	// []string,
	// []int16,
	// []uint16,
	// []int32,
	// []uint32,
	// []int64,
	// []uint64,
	// []float32,
	// []float64
	// *BulkDataBuffer
	// *Sequence
	ValueField interface{}

	// ValueLength is equal to the length of the ValueField in bytes.
	// Can be equal to 0xFFFFFFFF to represent an undefined length:
	// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.1
	ValueLength uint32
}

// StringValue returns the first value of a DataElement whose ValueField is a []string.
func (e *DataElement) StringValue() (string, error) {
	strs, ok := e.ValueField.([]string)
	if !ok {
		return "", fmt.Errorf("expected ValueField of type []string, got %T", e.ValueField)
	}
	if len(strs) == 0 {
		return "", fmt.Errorf("element %v has no values", e.Tag)
	}
	return strs[0], nil
}

func (e *DataElement) String() string {
	return e.string(0)
}

func (e *DataElement) string(indentLvl int) string {
	indent := strings.Repeat("  ", indentLvl)
	vr := "??"
	if e.VR != nil {
		vr = e.VR.Name
	}
	switch v := e.ValueField.(type) {
	case *Sequence:
		return fmt.Sprintf("%s%v %s %s", indent, e.Tag, vr, v.string(indentLvl))
	case *BulkDataBuffer:
		return fmt.Sprintf("%s%v %s %v", indent, e.Tag, vr, v)
	default:
		return fmt.Sprintf("%s%v %s %v", indent, e.Tag, vr, v)
	}
}

// DataSet models a DICOM Data Set as defined
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10
type DataSet struct {
	// Elements is a map of DataElement tags to *DataElement
	Elements map[DataElementTag]*DataElement
}

// NewDataSet creates a DataSet from a map of tags to ValueFields. The VR of each DataElement is
// filled in from the DICOM Data Dictionary and the ValueLength is calculated from the ValueField.
func NewDataSet(elements map[DataElementTag]interface{}) *DataSet {
	ds := &DataSet{Elements: make(map[DataElementTag]*DataElement, len(elements))}
	for tag, value := range elements {
		element := &DataElement{Tag: tag, VR: tag.DictionaryVR(), ValueField: value}
		if length, err := calculateValueLength(element); err == nil {
			element.ValueLength = length
		}
		ds.Elements[tag] = element
	}
	return ds
}

// Add inserts element into the DataSet, replacing any element with the same tag.
func (ds *DataSet) Add(element *DataElement) {
	if ds.Elements == nil {
		ds.Elements = map[DataElementTag]*DataElement{}
	}
	ds.Elements[element.Tag] = element
}

// Get returns the element with the given tag.
func (ds *DataSet) Get(tag DataElementTag) (*DataElement, bool) {
	if ds == nil {
		return nil, false
	}
	element, ok := ds.Elements[tag]
	return element, ok
}

// Remove deletes the element with the given tag if present.
func (ds *DataSet) Remove(tag DataElementTag) {
	delete(ds.Elements, tag)
}

// Len returns the number of top level elements.
func (ds *DataSet) Len() int {
	if ds == nil {
		return 0
	}
	return len(ds.Elements)
}

// FirstString returns the first value of a textual element. Missing elements, non-text elements
// and elements without values all report ok == false.
func (ds *DataSet) FirstString(tag DataElementTag) (string, bool) {
	element, ok := ds.Get(tag)
	if !ok {
		return "", false
	}
	s, err := element.StringValue()
	if err != nil {
		return "", false
	}
	return s, true
}

// SortedTags returns the tags of the DataSet in ascending order, which is the order Data Elements
// are encoded in as required by
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1
func (ds *DataSet) SortedTags() []DataElementTag {
	tags := make([]DataElementTag, 0, len(ds.Elements))
	for tag := range ds.Elements {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// SortedElements returns the elements of the DataSet ordered by ascending tag.
func (ds *DataSet) SortedElements() []*DataElement {
	tags := ds.SortedTags()
	elements := make([]*DataElement, len(tags))
	for i, tag := range tags {
		elements[i] = ds.Elements[tag]
	}
	return elements
}

// Copy returns a structural copy of the DataSet. Elements and nested sequence items are new
// values, ValueFields other than sequences are shared with the receiver.
func (ds *DataSet) Copy() *DataSet {
	cp := &DataSet{Elements: make(map[DataElementTag]*DataElement, len(ds.Elements))}
	for tag, element := range ds.Elements {
		cp.Elements[tag] = element.Copy()
	}
	return cp
}

// Copy returns a copy of the element. Sequence items are copied recursively, other ValueFields are
// shared.
func (e *DataElement) Copy() *DataElement {
	cp := *e
	if seq, ok := e.ValueField.(*Sequence); ok {
		items := make([]*DataSet, len(seq.Items))
		for i, item := range seq.Items {
			items[i] = item.Copy()
		}
		cp.ValueField = &Sequence{Items: items}
	}
	return &cp
}

// RemovePrivateElements deletes every element with an odd group number, including elements
// nested in sequence items.
func (ds *DataSet) RemovePrivateElements() {
	for tag, element := range ds.Elements {
		if tag.IsPrivate() {
			delete(ds.Elements, tag)
			continue
		}
		if seq, ok := element.ValueField.(*Sequence); ok {
			for _, item := range seq.Items {
				item.RemovePrivateElements()
			}
		}
	}
}

func (ds *DataSet) String() string {
	return ds.string(0)
}

func (ds *DataSet) string(indentLvl int) string {
	lines := make([]string, 0, len(ds.Elements))
	for _, element := range ds.SortedElements() {
		lines = append(lines, element.string(indentLvl))
	}
	return strings.Join(lines, "\n")
}
