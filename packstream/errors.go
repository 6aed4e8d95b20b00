// The MIT License (MIT)
//
// Copyright (c) 2013-2017 Oryx(ossrs)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

// Package packstream implements the PackStream binary value codec: the
// variable-width, self-describing format used to carry graph values over
// the Bolt wire protocol.
package packstream

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrDataNotEnough means the input ended before a value could be fully read.
var ErrDataNotEnough = errors.New("packstream: data is not enough")

// InvalidMarkerError means no marker class matches the leading byte.
type InvalidMarkerError struct {
	Marker byte
}

func (e *InvalidMarkerError) Error() string {
	return fmt.Sprintf("packstream: invalid marker 0x%02x", e.Marker)
}

// InvalidSignatureError means a structure's signature byte is not registered.
type InvalidSignatureError struct {
	Signature byte
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("packstream: invalid structure signature 0x%02x", e.Signature)
}

// InvalidStructureError means a structure's observed field count disagreed
// with its registered arity, or a map key was not a String.
type InvalidStructureError struct {
	Reason string
}

func (e *InvalidStructureError) Error() string {
	return fmt.Sprintf("packstream: invalid structure: %s", e.Reason)
}

// TruncatedError means the input ends before a value completes.
type TruncatedError struct {
	Wanted int
	Got    int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("packstream: truncated input, wanted %d bytes, got %d", e.Wanted, e.Got)
}

// InvalidUTF8Error means string bytes were not valid UTF-8.
type InvalidUTF8Error struct{}

func (e *InvalidUTF8Error) Error() string {
	return "packstream: invalid utf-8 in string value"
}

// IntegerOverflowError means a decoded integer does not fit a requested
// narrower target.
type IntegerOverflowError struct {
	Value int64
	Bits  int
}

func (e *IntegerOverflowError) Error() string {
	return fmt.Sprintf("packstream: integer %d overflows %d-bit target", e.Value, e.Bits)
}

func truncated(wanted, got int) error {
	return errors.WithStack(&TruncatedError{Wanted: wanted, Got: got})
}
