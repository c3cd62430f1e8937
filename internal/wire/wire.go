// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package wire implements the frame protocol carried over the OS pipes
// that connect a process-executor parent to its per-component child
// processes (flow/executor/proc). Packets crossing that boundary stop
// being Go values and become bytes, so the in-memory identity semantics
// of flow/packet no longer apply: a Frame only carries what JSON can
// represent, plus the bracket Tag and namespace key needed to replay
// spec.md §2's substream/map brackets on the far side.
//
// This generalizes pflow/executors/base.py's PacketSerializer hierarchy
// (JsonPacketSerializer did only packet.value, via plain json.dumps/loads)
// to also carry the tag and namespace key, since a process boundary has to
// preserve brackets, not just data packets. Frames are snappy-compressed
// the same way exporter/sinker/metrics.Sinker compresses its remote-write
// payloads, and length-prefixed so a Reader never has to guess where one
// JSON document ends and the next begins inside a byte-stream pipe.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/goccy/go-json"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/packetd/flowengine/flow/packet"
)

// maxFrameSize bounds the length prefix so a corrupt or malicious header
// can't make Reader try to allocate an unbounded buffer.
const maxFrameSize = 64 << 20

// ErrFrameTooLarge is returned by Reader when a length prefix exceeds
// maxFrameSize.
var ErrFrameTooLarge = errors.New("wire: frame exceeds maximum size")

// Frame is the wire form of one flow/packet.Packet (or its end-of-stream
// signal). Value and NSKey round-trip through goccy/go-json, so only
// JSON-representable packet values can cross a process boundary; spec.md's
// Non-goals already exclude requiring Go-only types to survive process
// isolation.
type Frame struct {
	Tag   packet.Tag `json:"tag"`
	NSKey any        `json:"nskey,omitempty"`
	Value any        `json:"value,omitempty"`
	EOS   bool       `json:"eos,omitempty"`
}

// EndOfStreamFrame is written by a pipeSink proxy once its upstream source
// has closed, telling the peer process no more frames will follow.
var EndOfStreamFrame = Frame{EOS: true}

// Writer serializes Frames onto an underlying byte stream (an *os.File
// backed by an OS pipe in production, anything implementing io.Writer in
// tests).
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer that writes frames to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame encodes and writes one frame: JSON-marshal, snappy-compress,
// then a 4-byte little-endian length prefix and the compressed payload in
// a single Write call so a concurrent reader on the other end of a pipe
// never observes a torn frame.
func (w *Writer) WriteFrame(f Frame) error {
	b, err := json.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "wire: marshal frame")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	compressed := snappy.Encode(nil, b)

	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(compressed)))
	buf.Write(hdr[:])
	buf.Write(compressed)

	_, err = w.w.Write(buf.Bytes())
	return errors.Wrap(err, "wire: write frame")
}

// Reader deserializes Frames from an underlying byte stream.
type Reader struct {
	r io.Reader
}

// NewReader returns a Reader that reads frames from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadFrame reads and decodes the next frame. A clean peer shutdown (pipe
// closed with no partial frame pending) surfaces as io.EOF, which callers
// in flow/executor/proc treat exactly like a closed in-memory queue:
// end-of-stream, not an error.
func (r *Reader) ReadFrame() (Frame, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Frame{}, errors.Wrap(err, "wire: truncated frame header")
		}
		return Frame{}, err
	}

	n := binary.LittleEndian.Uint32(hdr[:])
	if n > maxFrameSize {
		return Frame{}, ErrFrameTooLarge
	}

	compressed := make([]byte, n)
	if _, err := io.ReadFull(r.r, compressed); err != nil {
		return Frame{}, errors.Wrap(err, "wire: read frame body")
	}

	b, err := snappy.Decode(nil, compressed)
	if err != nil {
		return Frame{}, errors.Wrap(err, "wire: decompress frame")
	}

	var f Frame
	if err := json.Unmarshal(b, &f); err != nil {
		return Frame{}, errors.Wrap(err, "wire: unmarshal frame")
	}
	return f, nil
}
