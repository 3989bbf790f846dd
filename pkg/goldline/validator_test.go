// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

package goldline

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{"empty", nil, 0x0000},
		{"single byte", []byte{0x7F}, 0x007F},
		{"keep-alive header", []byte{0x10, 0x02, 0x4B, 0x41}, 0x009E},
		{"carries past one byte", []byte{0xFF, 0xFF, 0xFF}, 0x02FD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.data); got != tt.want {
				t.Errorf("Checksum(% X) = %#04x, want %#04x", tt.data, got, tt.want)
			}
		})
	}
}

func TestStuffDestuff_Inverse(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"no DLE", []byte{0x01, 0x02, 0x03}},
		{"single DLE", []byte{0x10}},
		{"adjacent DLEs", []byte{0x10, 0x10}},
		{"DLE then escape byte", []byte{0x10, 0x00}},
		{"DLE at both ends", []byte{0x10, 0x42, 0x10}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Destuff(Stuff(tt.data))
			if !bytes.Equal(got, tt.data) {
				t.Errorf("Destuff(Stuff(% X)) = % X", tt.data, got)
			}
		})
	}
}

func TestEncodeFrame_KeepAlive(t *testing.T) {
	want := []byte{0x10, 0x02, 0x4B, 0x41, 0x00, 0x9E, 0x10, 0x03}
	got := EncodeFrame(FrameKeepAlive, nil)
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeFrame(FrameKeepAlive) = % X, want % X", got, want)
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		frameType uint16
		payload   []byte
	}{
		{"keep-alive", FrameKeepAlive, nil},
		{"display text", FrameDisplay, []byte("Pool Temp  78_F")},
		{"LED masks", FrameLEDs, []byte{0, 0, 0, 8, 0, 0, 0, 0}},
		{"payload with DLE", FrameRemoteKey, []byte{0x00, 0x01, 0x10, 0x00, 0x00, 0x01, 0x10, 0x00}},
		{"payload of DLEs", FrameRemoteKey, bytes.Repeat([]byte{0x10}, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := EncodeFrame(tt.frameType, tt.payload)
			frameType, payload, err := Validate(raw)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if frameType != tt.frameType {
				t.Errorf("type = %#04x, want %#04x", frameType, tt.frameType)
			}
			if !bytes.Equal(payload, tt.payload) && len(tt.payload) > 0 {
				t.Errorf("payload = % X, want % X", payload, tt.payload)
			}
		})
	}
}

func TestValidate_SingleByteCorruptionDetected(t *testing.T) {
	// Corrupt every interior byte in turn; the validator must reject each
	// mutation, whether the checksum or the delimiter scan catches it.
	raw := EncodeFrame(FrameDisplay, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07})

	for i := 2; i < len(raw)-2; i++ {
		mutated := make([]byte, len(raw))
		copy(mutated, raw)
		mutated[i] ^= 0x01

		if _, _, err := Validate(mutated); err == nil {
			t.Errorf("corruption at byte %d passed validation: % X", i, mutated)
		}
	}
}

func TestValidate_ChecksumMismatchReason(t *testing.T) {
	raw := EncodeFrame(FrameKeepAlive, nil)
	raw[3] ^= 0x04 // 0x41 -> 0x45

	_, _, err := Validate(raw)
	var rej *RejectError
	if !errors.As(err, &rej) {
		t.Fatalf("expected RejectError, got %v", err)
	}
	if rej.Reason != RejectChecksumMismatch {
		t.Errorf("reason = %v, want %v", rej.Reason, RejectChecksumMismatch)
	}
}

func TestValidate_SpuriousDelimiter(t *testing.T) {
	// Hand-build frames whose destuffed body embeds a delimiter pair. The
	// checksum is deliberately correct so the delimiter scan must fire first.
	build := func(body []byte) []byte {
		raw := append([]byte{DLE, STX}, body...)
		sum := Checksum(raw)
		raw = binary.BigEndian.AppendUint16(raw, sum)
		return append(raw, DLE, ETX)
	}

	tests := []struct {
		name string
		body []byte
	}{
		{"embedded start", []byte{0x01, 0x02, DLE, STX, 0x05, 0x06}},
		{"embedded end", []byte{0x01, 0x02, DLE, ETX, 0x05, 0x06}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Validate(build(tt.body))
			var rej *RejectError
			if !errors.As(err, &rej) {
				t.Fatalf("expected RejectError, got %v", err)
			}
			if rej.Reason != RejectSpuriousDelimiter {
				t.Errorf("reason = %v, want %v", rej.Reason, RejectSpuriousDelimiter)
			}
		})
	}
}

func TestValidate_Truncated(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"delimiters only", []byte{DLE, STX, DLE, ETX}},
		{"missing checksum", []byte{DLE, STX, 0x4B, 0x41, DLE, ETX}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Validate(tt.raw)
			var rej *RejectError
			if !errors.As(err, &rej) {
				t.Fatalf("expected RejectError, got %v", err)
			}
			if rej.Reason != RejectTruncated {
				t.Errorf("reason = %v, want %v", rej.Reason, RejectTruncated)
			}
		})
	}
}

func TestRejectReason_String(t *testing.T) {
	tests := []struct {
		reason RejectReason
		want   string
	}{
		{RejectSpuriousDelimiter, "SPURIOUS_DELIMITER"},
		{RejectChecksumMismatch, "CHECKSUM_MISMATCH"},
		{RejectTruncated, "TRUNCATED"},
		{RejectReason(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("RejectReason(%d).String() = %q, want %q", tt.reason, got, tt.want)
		}
	}
}
