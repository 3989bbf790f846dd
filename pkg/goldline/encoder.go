// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

package goldline

// EncodeFrame builds a complete wire-formatted frame: start delimiter,
// big-endian type code, payload, checksum, end delimiter. Byte stuffing is
// applied to everything between the delimiters.
func EncodeFrame(frameType uint16, payload []byte) []byte {
	inner := make([]byte, 0, 4+len(payload))
	inner = append(inner, byte(frameType>>8), byte(frameType))
	inner = append(inner, payload...)

	// Checksum covers the start delimiter through the payload.
	sum := Checksum(append([]byte{DLE, STX}, inner...))
	inner = append(inner, byte(sum>>8), byte(sum))

	stuffed := Stuff(inner)

	frame := make([]byte, 0, len(stuffed)+4)
	frame = append(frame, DLE, STX)
	frame = append(frame, stuffed...)
	frame = append(frame, DLE, ETX)
	return frame
}

// Stuff escapes literal DLE bytes so payload data never forms a delimiter
// sequence on the wire. Each DLE becomes DLE ESC.
func Stuff(data []byte) []byte {
	out := make([]byte, 0, len(data)+4)
	for _, b := range data {
		out = append(out, b)
		if b == DLE {
			out = append(out, ESC)
		}
	}
	return out
}

// Destuff removes byte stuffing: every DLE ESC pair collapses to a single
// DLE. It is the inverse of Stuff for any input.
func Destuff(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		out = append(out, data[i])
		if data[i] == DLE && i+1 < len(data) && data[i+1] == ESC {
			i++
		}
	}
	return out
}
