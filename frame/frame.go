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

// Package frame implements Bolt's chunked transport framing: splitting an
// encoded message into length-prefixed chunks terminated by a zero-length
// chunk, and reassembling chunks back into a message on the read side.
package frame

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// MaxChunkSize is the largest payload a single chunk may carry; the 16-bit
// length prefix caps it at 65535 bytes.
const MaxChunkSize = 0xFFFF

// DefaultChunkSize is used by Writer when no explicit size is configured.
const DefaultChunkSize = MaxChunkSize

// Writer splits outbound message bytes into chunks and writes them,
// followed by a zero-length terminator chunk, to an underlying io.Writer.
type Writer struct {
	w         *bufio.Writer
	chunkSize int
}

// NewWriter wraps w, chunking at DefaultChunkSize.
func NewWriter(w io.Writer) *Writer {
	return NewWriterSize(w, DefaultChunkSize)
}

// NewWriterSize wraps w, chunking at the given size (1..MaxChunkSize).
func NewWriterSize(w io.Writer, chunkSize int) *Writer {
	if chunkSize <= 0 || chunkSize > MaxChunkSize {
		chunkSize = DefaultChunkSize
	}
	return &Writer{w: bufio.NewWriter(w), chunkSize: chunkSize}
}

// WriteMessage chunks and writes one complete encoded message, ending with
// the zero-length terminator chunk, then flushes.
func (v *Writer) WriteMessage(msg []byte) error {
	for len(msg) > 0 {
		n := len(msg)
		if n > v.chunkSize {
			n = v.chunkSize
		}
		if err := v.writeChunk(msg[:n]); err != nil {
			return err
		}
		msg = msg[n:]
	}

	if err := v.writeChunk(nil); err != nil {
		return err
	}

	return v.w.Flush()
}

func (v *Writer) writeChunk(payload []byte) error {
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(payload)))
	if _, err := v.w.Write(hdr[:]); err != nil {
		return errors.Wrap(err, "frame: write chunk header")
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := v.w.Write(payload); err != nil {
		return errors.Wrap(err, "frame: write chunk payload")
	}
	return nil
}

// Reader reassembles chunks from an underlying io.Reader back into
// complete messages. A chunk boundary may fall anywhere inside an encoded
// value; Reader makes no assumption about alignment (§4.2).
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br}
}

// ReadMessage reads chunks until a zero-length terminator chunk is
// observed and returns the reassembled message.
func (v *Reader) ReadMessage() ([]byte, error) {
	var msg []byte
	for {
		var hdr [2]byte
		if _, err := io.ReadFull(v.r, hdr[:]); err != nil {
			return nil, errors.Wrap(err, "frame: read chunk header")
		}
		n := binary.BigEndian.Uint16(hdr[:])
		if n == 0 {
			return msg, nil
		}

		chunk := make([]byte, n)
		if _, err := io.ReadFull(v.r, chunk); err != nil {
			return nil, errors.Wrap(err, "frame: read chunk payload")
		}
		msg = append(msg, chunk...)
	}
}
