// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

package goldline

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// RejectReason classifies why a frame failed validation.
type RejectReason int

const (
	// RejectSpuriousDelimiter means a start or end delimiter sequence was
	// found inside the frame body after destuffing. Framing desynchronized
	// upstream; the framer must be reset.
	RejectSpuriousDelimiter RejectReason = iota
	// RejectChecksumMismatch means the computed checksum does not match
	// the trailing checksum field.
	RejectChecksumMismatch
	// RejectTruncated means the frame is shorter than the minimum
	// delimiters + type + checksum layout.
	RejectTruncated
)

func (r RejectReason) String() string {
	switch r {
	case RejectSpuriousDelimiter:
		return "SPURIOUS_DELIMITER"
	case RejectChecksumMismatch:
		return "CHECKSUM_MISMATCH"
	case RejectTruncated:
		return "TRUNCATED"
	default:
		return "UNKNOWN"
	}
}

// RejectError reports a frame validation failure. None of these are fatal:
// the caller recovers by resetting the framer and resuming the cycle.
type RejectError struct {
	Reason  RejectReason
	Message string
}

func (e *RejectError) Error() string {
	return e.Message
}

// Validate destuffs and validates a complete delimited frame. On success it
// returns the frame's type code and its payload (the bytes between the type
// and the checksum). On failure it returns a *RejectError and the framer
// should be reset.
func Validate(raw []byte) (uint16, []byte, error) {
	frame := Destuff(raw)

	if len(frame) < MinFrameSize {
		return 0, nil, &RejectError{
			Reason:  RejectTruncated,
			Message: fmt.Sprintf("frame too short: %d bytes (min %d)", len(frame), MinFrameSize),
		}
	}

	// No delimiter sequence may appear between the outer markers. The
	// scan covers the type, payload and checksum bytes, matching the
	// controller's own framing rules.
	interior := frame[2 : len(frame)-2]
	if bytes.Contains(interior, []byte{DLE, STX}) {
		return 0, nil, &RejectError{
			Reason:  RejectSpuriousDelimiter,
			Message: fmt.Sprintf("DLE STX inside frame: % X", frame),
		}
	}
	if bytes.Contains(interior, []byte{DLE, ETX}) {
		return 0, nil, &RejectError{
			Reason:  RejectSpuriousDelimiter,
			Message: fmt.Sprintf("DLE ETX inside frame: % X", frame),
		}
	}

	want := binary.BigEndian.Uint16(frame[len(frame)-4 : len(frame)-2])
	got := Checksum(frame[:len(frame)-4])
	if got != want {
		return 0, nil, &RejectError{
			Reason:  RejectChecksumMismatch,
			Message: fmt.Sprintf("checksum mismatch: expected 0x%04X, got 0x%04X", want, got),
		}
	}

	frameType := binary.BigEndian.Uint16(frame[2:4])
	payload := frame[4 : len(frame)-4]
	return frameType, payload, nil
}
