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

// ParseOption configures the behavior of ParseFile.
type ParseOption func(*parseOptions)

type parseOptions struct {
	permissive       bool
	stopBeforePixels bool
}

func newParseOptions(opts []ParseOption) parseOptions {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Permissive returns a ParseOption that accepts input that is not a valid Part 10 file: files
// without a preamble, files without the DICM prefix and raw data sets, optionally beginning with
// inline file meta elements. The encoding of the data set is inferred from its first element when
// it is not declared or when the declaration contradicts the stream.
func Permissive() ParseOption {
	return func(o *parseOptions) {
		o.permissive = true
	}
}

// StopBeforePixels returns a ParseOption that stops parsing at the first pixel data element
// (7FE0,0008), (7FE0,0009) or (7FE0,0010) of the top level data set. Neither the pixel data nor
// any element following it is returned.
func StopBeforePixels() ParseOption {
	return func(o *parseOptions) {
		o.stopBeforePixels = true
	}
}

func isPixelDataTag(tag DataElementTag) bool {
	return tag == PixelDataTag || tag == FloatPixelDataTag || tag == DoubleFloatPixelDataTag
}
