// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

package goldline

import "errors"

// ErrOversizeFrame is returned by Feed when the accumulation buffer fills
// without an end delimiter. The framer has already reset itself and
// resumed seeking a start delimiter.
var ErrOversizeFrame = errors.New("goldline: frame exceeds max size without end delimiter")

// Framer reassembles the raw bus byte stream into delimited frames.
//
// Feed consumes exactly one byte per call so the caller can interleave
// framing with its other periodic work. A completed frame must be drained
// with Frame and Reset before feeding resumes; bytes fed while a frame is
// pending are dropped.
type Framer struct {
	seekingStart bool
	sawDLE       bool
	buf          []byte
	ready        bool
}

// NewFramer creates a framer in seeking-start mode with an empty buffer.
func NewFramer() *Framer {
	return &Framer{
		seekingStart: true,
		buf:          make([]byte, 0, MaxFrameSize),
	}
}

// Feed processes a single byte. It returns true when a complete delimited
// frame is buffered and ready to be consumed.
func (f *Framer) Feed(b byte) (bool, error) {
	if f.ready {
		// Back-pressure: the pending frame has not been drained yet.
		return true, nil
	}

	if f.seekingStart {
		if f.sawDLE {
			f.sawDLE = false
			if b == STX {
				f.buf = append(f.buf[:0], DLE, STX)
				f.seekingStart = false
			}
			// On mismatch, scanning resumes from the byte after this
			// one; the mismatch byte is not reconsidered as a new DLE.
			return false, nil
		}
		if b == DLE {
			f.sawDLE = true
		}
		return false, nil
	}

	if len(f.buf) >= MaxFrameSize {
		f.Reset()
		return false, ErrOversizeFrame
	}

	f.buf = append(f.buf, b)
	n := len(f.buf)
	if b == ETX && f.buf[n-2] == DLE {
		// A literal DLE in the frame body is stuffed on the wire, so
		// DLE ETX here is a genuine end delimiter.
		f.ready = true
		f.seekingStart = true
		return true, nil
	}
	return false, nil
}

// HasFrame reports whether a completed frame is waiting to be drained.
func (f *Framer) HasFrame() bool {
	return f.ready
}

// Frame returns a copy of the completed frame, or nil if none is ready.
func (f *Framer) Frame() []byte {
	if !f.ready {
		return nil
	}
	frame := make([]byte, len(f.buf))
	copy(frame, f.buf)
	return frame
}

// Reset discards the buffer and returns to seeking-start mode. Callers
// must Reset after consuming a frame, and after any validation failure.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
	f.ready = false
	f.seekingStart = true
	f.sawDLE = false
}
