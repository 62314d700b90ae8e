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
	"time"
)

// Status is the result of normalizing one file.
type Status string

const (
	StatusOK   Status = "OK"
	StatusSkip Status = "SKIP"
	StatusFail Status = "FAIL"
)

// Flag is a yes/no value that may not have been determined.
type Flag int

const (
	FlagUnset Flag = iota
	FlagNo
	FlagYes
)

// FlagOf returns FlagYes for true and FlagNo for false.
func FlagOf(b bool) Flag {
	if b {
		return FlagYes
	}
	return FlagNo
}

func (f Flag) String() string {
	switch f {
	case FlagYes:
		return "yes"
	case FlagNo:
		return "no"
	default:
		return ""
	}
}

// Columns are the names of the fields of Outcome.Row, in order.
var Columns = []string{
	"input",
	"output",
	"status",
	"part10_in",
	"ts_in",
	"decompressed",
	"ts_out",
	"manufacturer",
	"modality",
	"sop_class",
	"error",
}

// Outcome describes what happened to one input file. Err is set iff Status is StatusFail.
type Outcome struct {
	Input  string
	Output string
	Status Status

	Part10In          Flag
	TransferSyntaxIn  string
	Decompressed      Flag
	TransferSyntaxOut string

	Manufacturer string
	Modality     string
	SOPClass     string

	Err error

	// Digest is the hex encoded BLAKE3 digest of the written file.
	Digest   string
	Duration time.Duration
}

// ErrorText returns the text of Err, or the empty string.
func (o Outcome) ErrorText() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Row returns the fields of o in the order of Columns.
func (o Outcome) Row() []string {
	return []string{
		o.Input,
		o.Output,
		string(o.Status),
		o.Part10In.String(),
		o.TransferSyntaxIn,
		o.Decompressed.String(),
		o.TransferSyntaxOut,
		o.Manufacturer,
		o.Modality,
		o.SOPClass,
		o.ErrorText(),
	}
}

// String formats o as a one line progress report.
func (o Outcome) String() string {
	return fmt.Sprintf("[%s] %s inTS=%s outTS=%s dec=%s", o.Status, o.Input, dash(o.TransferSyntaxIn), dash(o.TransferSyntaxOut), dash(o.Decompressed.String()))
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
