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

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/medbrief/dicom-normalizer/codec"
	"github.com/medbrief/dicom-normalizer/dicom"
	"github.com/medbrief/dicom-normalizer/normalize"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE...",
		Short: "Print how files would be classified and normalized",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectFiles(cmd.OutOrStdout(), codec.DefaultRegistry(), args)
		},
	}
}

type inspection struct {
	Path  string `yaml:"path"`
	Error string `yaml:"error,omitempty"`

	Preamble       bool   `yaml:"preamble"`
	SelfDescribing bool   `yaml:"self_describing"`
	TransferSyntax string `yaml:"transfer_syntax,omitempty"`
	Kind           string `yaml:"kind,omitempty"`
	Encoding       string `yaml:"encoding"`
	Decodable      bool   `yaml:"decodable"`
	TargetSyntax   string `yaml:"target_syntax"`

	Manufacturer    string   `yaml:"manufacturer,omitempty"`
	Vendors         []string `yaml:"vendors,omitempty"`
	Modality        string   `yaml:"modality,omitempty"`
	SOPClass        string   `yaml:"sop_class,omitempty"`
	SOPInstance     string   `yaml:"sop_instance,omitempty"`
	PrivateElements int      `yaml:"private_elements"`

	Pixels *pixelInfo `yaml:"pixels,omitempty"`
}

type pixelInfo struct {
	Rows                      int    `yaml:"rows"`
	Columns                   int    `yaml:"columns"`
	SamplesPerPixel           int    `yaml:"samples_per_pixel"`
	BitsAllocated             int    `yaml:"bits_allocated"`
	PhotometricInterpretation string `yaml:"photometric_interpretation,omitempty"`
	Frames                    int    `yaml:"frames"`
	Encapsulated              bool   `yaml:"encapsulated"`
	Fragments                 int    `yaml:"fragments,omitempty"`
	Bytes                     int    `yaml:"bytes"`
}

// inspectFiles writes one YAML document per path to w. It fails when any file cannot be read,
// after reporting every file.
func inspectFiles(w io.Writer, reg *codec.Registry, paths []string) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()

	failed := 0
	for _, path := range paths {
		in := inspectFile(reg, path)
		if in.Error != "" {
			failed++
		}
		if err := enc.Encode(in); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be read", failed, len(paths))
	}
	return nil
}

func inspectFile(reg *codec.Registry, path string) inspection {
	in := inspection{Path: path}

	r, err := os.Open(path)
	if err != nil {
		in.Error = err.Error()
		return in
	}
	defer r.Close()
	f, err := dicom.ParseFile(r, dicom.Permissive())
	if err != nil {
		in.Error = err.Error()
		return in
	}

	c := normalize.Classify(f)
	in.Preamble = f.Preamble != nil
	in.SelfDescribing = c.SelfDescribing
	in.Encoding = f.Encoding.String()
	if uid, ok := f.TransferSyntaxUID(); ok {
		in.TransferSyntax = uid
	}
	if c.Declared != nil {
		in.TransferSyntax = c.Declared.String()
		in.Kind = c.Declared.Kind.String()
	}

	pixels := pixelBuffer(f.Body)
	if pixels != nil && pixels.Encapsulated() {
		switch {
		case c.Declared == nil:
			uid, ok := reg.Sniff(pixels)
			in.Decodable = ok && reg.Supports(uid)
		case c.Declared.Compressed():
			in.Decodable = reg.Supports(c.Declared.UID)
		}
	}
	in.TargetSyntax = normalize.SelectTargetSyntax(c.Declared, in.Decodable).String()

	in.Manufacturer, _ = f.Body.DecodedString(dicom.ManufacturerTag)
	for _, v := range normalize.Vendors() {
		if normalize.LooksLike(v, f) {
			in.Vendors = append(in.Vendors, v.Name)
		}
	}
	in.Modality, _ = f.Body.FirstString(dicom.ModalityTag)
	in.SOPClass, _ = f.Body.FirstString(dicom.SOPClassUIDTag)
	in.SOPInstance, _ = f.Body.FirstString(dicom.SOPInstanceUIDTag)
	for _, tag := range f.Body.SortedTags() {
		if tag.IsPrivate() {
			in.PrivateElements++
		}
	}

	if pixels != nil {
		in.Pixels = describePixels(f.Body, pixels)
	}
	return in
}

func pixelBuffer(body *dicom.DataSet) *dicom.BulkDataBuffer {
	e, ok := body.Get(dicom.PixelDataTag)
	if !ok {
		return nil
	}
	b, _ := e.ValueField.(*dicom.BulkDataBuffer)
	return b
}

func describePixels(body *dicom.DataSet, pixels *dicom.BulkDataBuffer) *pixelInfo {
	p := &pixelInfo{
		Rows:            uintValue(body, dicom.RowsTag),
		Columns:         uintValue(body, dicom.ColumnsTag),
		SamplesPerPixel: uintValue(body, dicom.SamplesPerPixelTag),
		BitsAllocated:   uintValue(body, dicom.BitsAllocatedTag),
		Frames:          1,
		Encapsulated:    pixels.Encapsulated(),
	}
	p.PhotometricInterpretation, _ = body.FirstString(dicom.PhotometricInterpretationTag)
	if s, ok := body.FirstString(dicom.NumberOfFramesTag); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
			p.Frames = n
		}
	}
	for _, fragment := range pixels.Fragments() {
		p.Bytes += len(fragment)
	}
	if p.Encapsulated {
		p.Fragments = len(pixels.Fragments())
	}
	return p
}

func uintValue(body *dicom.DataSet, tag dicom.DataElementTag) int {
	e, ok := body.Get(tag)
	if !ok {
		return 0
	}
	if v, ok := e.ValueField.([]uint16); ok && len(v) > 0 {
		return int(v[0])
	}
	return 0
}
