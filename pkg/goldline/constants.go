// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

// Package goldline implements the Goldline half-duplex serial bus protocol
// spoken by pool/spa equipment controllers.
//
// The package provides byte-stream framing, frame validation and
// destuffing, frame dispatch, key-press encoding, and the two-heartbeat
// command handshake used to inject frames onto the shared bus without
// colliding with other bus traffic.
package goldline

// Protocol framing bytes. Frames open with DLE STX and close with DLE ETX.
// A literal DLE inside the frame body is transmitted as DLE ESC.
const (
	DLE = 0x10
	STX = 0x02
	ETX = 0x03
	ESC = 0x00
)

// Frame size limits
const (
	// MinFrameSize is DLE STX + 2 type bytes + 2 checksum bytes + DLE ETX.
	MinFrameSize = 8
	// MaxFrameSize bounds the accumulation buffer. The longest frame the
	// controller emits is a service-display update well under this cap;
	// anything larger means framing desynchronized.
	MaxFrameSize = 128
)

// Frame type codes (big-endian uint16, the two bytes after DLE STX)
const (
	FrameKeepAlive      = 0x4B41
	FrameLEDs           = 0x0102
	FrameDisplay        = 0x0103
	FrameDisplayService = 0x0403
	FrameServiceMode    = 0x0901
	FrameLocalKey       = 0x0002
	FrameRemoteKey      = 0x0083
)

// Handshake defaults
const (
	// DefaultAttempts is the transmission budget for commands that
	// require confirmation in observed device state.
	DefaultAttempts = 3
	// slotBeats is the number of consecutive keep-alive frames that must
	// be observed while armed before the bus is considered safe to use.
	// The first heartbeat may already be in flight when the command is
	// armed, so only the second confirmed-consecutive one grants a slot.
	slotBeats = 2
)
