// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

package goldline

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// FrameTypeName returns a human-readable name for a frame type code.
func FrameTypeName(frameType uint16) string {
	switch frameType {
	case FrameKeepAlive:
		return "KEEP_ALIVE"
	case FrameLEDs:
		return "LEDS"
	case FrameDisplay:
		return "DISPLAY"
	case FrameDisplayService:
		return "DISPLAY_SERVICE"
	case FrameServiceMode:
		return "SERVICE_MODE"
	case FrameLocalKey:
		return "LOCAL_KEY"
	case FrameRemoteKey:
		return "REMOTE_KEY"
	default:
		return "UNKNOWN"
	}
}

// FormatFrame renders a validated frame for terminal display.
func FormatFrame(ts time.Time, frameType uint16, payload []byte) string {
	result := fmt.Sprintf("[%s] %s (0x%04X) len=%d\n",
		ts.Format("15:04:05.000"), FrameTypeName(frameType), frameType, len(payload))

	if len(payload) == 0 {
		return result
	}

	switch frameType {
	case FrameDisplay, FrameDisplayService:
		var b strings.Builder
		for _, c := range payload {
			c &= 0x7F
			if c >= 0x20 && c < 0x7F {
				b.WriteByte(c)
			}
		}
		result += fmt.Sprintf("  Display: %q\n", strings.TrimSpace(b.String()))

	case FrameLEDs:
		if len(payload) >= 8 {
			lit := binary.BigEndian.Uint32(payload[0:4])
			blink := binary.BigEndian.Uint32(payload[4:8])
			result += fmt.Sprintf("  Lit: 0x%08X, Blink: 0x%08X\n", lit, blink)
			return result
		}
		result += hexDump(payload)

	case FrameLocalKey, FrameRemoteKey:
		if len(payload) >= 4 {
			key := binary.BigEndian.Uint32(payload[0:4])
			result += fmt.Sprintf("  Key: 0x%08X\n", key)
			return result
		}
		result += hexDump(payload)

	default:
		result += hexDump(payload)
	}

	return result
}

func hexDump(payload []byte) string {
	result := "  Payload: "
	for i, b := range payload {
		if i > 0 && i%16 == 0 {
			result += "\n           "
		}
		result += fmt.Sprintf("%02X ", b)
	}
	return result + "\n"
}
