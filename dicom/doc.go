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

// Package dicom provides functions and data structures for reading and writing the DICOM file
// format. ParseFile reads a file into a File whose file meta information and data set are
// buffered into memory as DataSets, and WriteFile writes a File back out as a DICOM Part 10 file.
//
// Reading is strict by default. The Permissive option accepts the kind of input that legacy
// modalities and archives produce: files without a preamble, raw data sets without any file meta
// information and data sets whose declared encoding does not match the byte stream.
//
// All transfer syntaxes in the registry can be read and written. Pixel data of the encapsulated
// (compressed) transfer syntaxes is kept as a BulkDataBuffer of fragments, decoding it is left to
// the codec package.
package dicom
