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

// Package uid generates and validates DICOM unique identifiers.
package uid

import (
	"math/big"
	"regexp"

	"github.com/google/uuid"
)

// maxLength is the maximum length of a UID value, PS3.5 section 9.1.
const maxLength = 64

// uuidRoot prefixes UIDs derived from a UUID as described in PS3.5 Annex B.2.
const uuidRoot = "2.25."

var components = regexp.MustCompile(`^(0|[1-9][0-9]*)(\.(0|[1-9][0-9]*))*$`)

// Generate returns a new globally unique UID: the UUID root followed by the decimal value of a
// random (version 4) UUID.
func Generate() string {
	id := uuid.New()
	return uuidRoot + new(big.Int).SetBytes(id[:]).String()
}

// Valid reports whether s is a syntactically valid UID: at most 64 characters of dot separated
// numeric components without leading zeros.
func Valid(s string) bool {
	return len(s) > 0 && len(s) <= maxLength && components.MatchString(s)
}
