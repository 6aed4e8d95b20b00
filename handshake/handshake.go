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

// Package handshake implements the Bolt version-negotiation exchange: a
// 4-byte magic preamble followed by four preferred versions, answered by
// the server with a single chosen version.
package handshake

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Preamble is the 4-byte magic the client sends before its offered
// versions, identifying the connection as Bolt.
var Preamble = [4]byte{0x60, 0x60, 0xB0, 0x17}

// HandshakeFailedError means the server chose a version the client did not
// offer, or returned the null version 0x00000000.
type HandshakeFailedError struct {
	Offered [4]uint32
}

func (e *HandshakeFailedError) Error() string {
	return fmt.Sprintf("handshake: server rejected offered versions %v", e.Offered)
}

// Negotiate sends the magic preamble and the four offered versions
// (preference order, 0 = padding), then reads and validates the server's
// chosen version.
//
// Per the open question in §9: a chosen version the client did not offer
// is treated identically to the null version — both fail the handshake.
func Negotiate(rw io.ReadWriter, offered [4]uint32) (chosen uint32, err error) {
	if err := writeOffer(rw, offered); err != nil {
		return 0, err
	}
	return readChosen(rw, offered)
}

func writeOffer(w io.Writer, offered [4]uint32) error {
	buf := make([]byte, 4+4*4)
	copy(buf, Preamble[:])
	for i, v := range offered {
		binary.BigEndian.PutUint32(buf[4+4*i:], v)
	}
	if _, err := w.Write(buf); err != nil {
		return errors.Wrap(err, "handshake: write offer")
	}
	return nil
}

func readChosen(r io.Reader, offered [4]uint32) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.Wrap(err, "handshake: read chosen version")
	}
	chosen := binary.BigEndian.Uint32(buf[:])

	if chosen == 0 {
		return 0, errors.WithStack(&HandshakeFailedError{Offered: offered})
	}
	for _, v := range offered {
		if v == chosen {
			return chosen, nil
		}
	}
	return 0, errors.WithStack(&HandshakeFailedError{Offered: offered})
}
