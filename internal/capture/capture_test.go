// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

package capture

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/saltline/poolbridge/pkg/goldline"
)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bus.capture")

	records := []Record{
		{UnixMicro: 1700000000000000, Type: goldline.FrameKeepAlive, Raw: goldline.EncodeFrame(goldline.FrameKeepAlive, nil)},
		{UnixMicro: 1700000000100000, Type: goldline.FrameDisplay, Raw: goldline.EncodeFrame(goldline.FrameDisplay, []byte("Pool Temp 78"))},
		{UnixMicro: 1700000000200000, Type: goldline.FrameLEDs, Raw: goldline.EncodeFrame(goldline.FrameLEDs, []byte{0, 0, 0, 8, 0, 0, 0, 0})},
	}

	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	for i, want := range records {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("Next record %d: %v", i, err)
		}
		if got.UnixMicro != want.UnixMicro || got.Type != want.Type || !bytes.Equal(got.Raw, want.Raw) {
			t.Errorf("record %d = %+v, want %+v", i, got, want)
		}
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next past end = %v, want io.EOF", err)
	}
}

func TestWriter_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bus.capture")

	for i := int64(0); i < 2; i++ {
		w, err := NewWriter(path)
		if err != nil {
			t.Fatalf("NewWriter: %v", err)
		}
		if err := w.Write(Record{UnixMicro: i, Type: goldline.FrameKeepAlive}); err != nil {
			t.Fatalf("Write: %v", err)
		}
		w.Close()
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	count := 0
	for {
		if _, err := r.Next(); err != nil {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("reopened file holds %d records, want 2", count)
	}
}

func TestOpenReader_MissingFile(t *testing.T) {
	if _, err := OpenReader(filepath.Join(t.TempDir(), "nope.capture")); err == nil {
		t.Error("OpenReader of missing file succeeded")
	}
}
