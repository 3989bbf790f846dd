// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

package goldline

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// TestFuzzFramer_RandomBytes feeds random byte streams to the framer and
// verifies it never panics and only ever reports well-delimited frames.
func TestFuzzFramer_RandomBytes(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		f := NewFramer()

		length := rng.Intn(512) + 1
		data := make([]byte, length)
		rng.Read(data)

		for _, b := range data {
			ready, err := f.Feed(b)
			if err != nil {
				// Oversize reset; the framer keeps going.
				continue
			}
			if !ready {
				continue
			}

			frame := f.Frame()
			if len(frame) < 4 {
				t.Fatalf("round %d: impossibly short frame: % X", i, frame)
			}
			if frame[0] != DLE || frame[1] != STX {
				t.Fatalf("round %d: frame without start delimiter: % X", i, frame)
			}
			if frame[len(frame)-2] != DLE || frame[len(frame)-1] != ETX {
				t.Fatalf("round %d: frame without end delimiter: % X", i, frame)
			}
			f.Reset()
		}
	}
}

// TestFuzzFramer_RandomFrames builds random well-formed frames, embeds them
// in random noise, and checks they survive framing and validation intact.
func TestFuzzFramer_RandomFrames(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	frameTypes := []uint16{FrameKeepAlive, FrameDisplay, FrameDisplayService, FrameLEDs, FrameRemoteKey, FrameLocalKey}

	for i := 0; i < rounds; i++ {
		frameType := frameTypes[rng.Intn(len(frameTypes))]
		payload := make([]byte, rng.Intn(48))
		rng.Read(payload)

		raw := EncodeFrame(frameType, payload)

		// A random body can spell out a delimiter pair once destuffed.
		// The validator rejects those, and the controller never emits
		// them, so skip such frames.
		inner := Destuff(raw)
		if bytes.Contains(inner[2:len(inner)-2], []byte{DLE, STX}) ||
			bytes.Contains(inner[2:len(inner)-2], []byte{DLE, ETX}) {
			continue
		}

		// Leading noise that cannot open a frame early.
		noise := make([]byte, rng.Intn(16))
		for j := range noise {
			noise[j] = byte(rng.Intn(0xEF)) + 0x11
		}

		f := NewFramer()
		frames := feedAll(t, f, append(noise, raw...))
		if len(frames) != 1 {
			t.Fatalf("round %d: %d frames from stream, want 1 (type %#04x, payload % X)",
				i, len(frames), frameType, payload)
		}

		gotType, gotPayload, err := Validate(frames[0])
		if err != nil {
			t.Fatalf("round %d: Validate: %v", i, err)
		}
		if gotType != frameType {
			t.Fatalf("round %d: type = %#04x, want %#04x", i, gotType, frameType)
		}
		if !bytes.Equal(gotPayload, payload) && len(payload) > 0 {
			t.Fatalf("round %d: payload = % X, want % X", i, gotPayload, payload)
		}
	}
}

// TestFuzzValidate_RandomBytes throws arbitrary byte slices at the
// validator; it must reject or accept without panicking.
func TestFuzzValidate_RandomBytes(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		data := make([]byte, rng.Intn(64))
		rng.Read(data)
		Validate(data)
	}
}
