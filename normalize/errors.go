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

import "fmt"

// ReadFailure is returned when the input cannot be parsed, even permissively.
type ReadFailure struct {
	Path string
	Err  error
}

func (e *ReadFailure) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadFailure) Unwrap() error { return e.Err }

// CodecFailure is returned when pixel data could not be decompressed. Syntax is empty when the
// decoder was chosen from the pixel data content.
type CodecFailure struct {
	Syntax string
	Err    error
}

func (e *CodecFailure) Error() string {
	if e.Syntax == "" {
		return fmt.Sprintf("decompressing undeclared pixel data: %v", e.Err)
	}
	return fmt.Sprintf("decompressing %s pixel data: %v", e.Syntax, e.Err)
}

func (e *CodecFailure) Unwrap() error { return e.Err }

// WriteFailure is returned when the output cannot be encoded or stored.
type WriteFailure struct {
	Path string
	Err  error
}

func (e *WriteFailure) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteFailure) Unwrap() error { return e.Err }

// VerifyFailure is returned when the written file does not read back with the intended transfer
// syntax. Err is set when the file could not be read at all.
type VerifyFailure struct {
	Path string
	Want string
	Got  string
	Err  error
}

func (e *VerifyFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("verifying %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("verifying %s: transfer syntax is %q, want %q", e.Path, e.Got, e.Want)
}

func (e *VerifyFailure) Unwrap() error { return e.Err }
