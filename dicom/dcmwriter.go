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
	"encoding/binary"
	"fmt"
	"io"
)

// dcmWriter wraps an io.Writer with helpers for encoding tags and numbers. It counts the bytes
// written so that write errors name the offset they occurred at.
type dcmWriter struct {
	w       io.Writer
	written int64
	scratch [4]byte
}

// newDcmWriter returns w itself when it already is a *dcmWriter.
func newDcmWriter(w io.Writer) *dcmWriter {
	if dw, ok := w.(*dcmWriter); ok {
		return dw
	}
	return &dcmWriter{w: w}
}

// Write implements io.Writer. A short write is reported as io.ErrShortWrite.
func (dw *dcmWriter) Write(p []byte) (int, error) {
	n, err := dw.w.Write(p)
	dw.written += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return n, fmt.Errorf("writing %d bytes at offset %d: %w", len(p), dw.written-int64(n), err)
	}
	return n, nil
}

func (dw *dcmWriter) Tag(order binary.ByteOrder, tag DataElementTag) error {
	if err := dw.UInt16(order, tag.GroupNumber()); err != nil {
		return err
	}
	return dw.UInt16(order, tag.ElementNumber())
}

func (dw *dcmWriter) Delimiter(order binary.ByteOrder, tag DataElementTag) error {
	if err := dw.Tag(order, tag); err != nil {
		return fmt.Errorf("writing delimiter tag: %w", err)
	}
	if err := dw.UInt32(order, 0); err != nil {
		return fmt.Errorf("writing item length of delimiter: %w", err)
	}
	return nil
}

func (dw *dcmWriter) UInt16(order binary.ByteOrder, v uint16) error {
	order.PutUint16(dw.scratch[:2], v)
	return dw.Bytes(dw.scratch[:2])
}

func (dw *dcmWriter) UInt32(order binary.ByteOrder, v uint32) error {
	order.PutUint32(dw.scratch[:4], v)
	return dw.Bytes(dw.scratch[:4])
}

func (dw *dcmWriter) String(s string) error {
	_, err := io.WriteString(dw, s)
	return err
}

func (dw *dcmWriter) Bytes(b []byte) error {
	_, err := dw.Write(b)
	return err
}
