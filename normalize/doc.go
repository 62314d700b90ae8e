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

// Package normalize converts DICOM files that may be headerless, malformed or compressed into
// self-describing Part 10 files with a declared transfer syntax.
//
// Each file goes through the same stages: the input is classified (Classify), its pixel data is
// decompressed when possible (AttemptDecompress), the output transfer syntax is chosen from the
// result (SelectTargetSyntax), a complete file meta group is rebuilt (MetaBuilder) and the body is
// copied into a new file (BuildOutput). Normalizer runs the stages for one file, writes and
// verifies the result and reports an Outcome.
package normalize
