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

import "github.com/medbrief/dicom-normalizer/dicom"

// BuildOutput returns a new file holding meta and a copy of the body of source, encoded with
// target. Elements of group 0002 found in the body are dropped. When stripPrivate is set, private
// elements are removed from the copy, including those nested in sequence items.
//
// The returned file shares no element or sequence item with source; bulk data buffers and other
// values are shared.
func BuildOutput(source *dicom.File, meta FileMeta, target TransferSyntax, stripPrivate bool) *dicom.File {
	out := dicom.NewFile(target.Encoding())
	out.Meta = meta.DataSet()

	for _, element := range source.Body.SortedElements() {
		if element.Tag.IsMetaElement() {
			continue
		}
		out.Body.Add(element.Copy())
	}

	// the source keeps its private elements
	if stripPrivate {
		out.Body.RemovePrivateElements()
	}
	return out
}
