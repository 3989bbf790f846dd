// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

// Package capture reads and writes bus frame capture files: a stream of
// CBOR-encoded records, one per validated frame, for offline replay and
// diagnosis.
package capture

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// Record is one captured bus frame. Raw holds the complete delimited frame
// as it appeared on the wire, stuffing included, so a replay exercises the
// full framer/validator pipeline.
type Record struct {
	UnixMicro int64  `cbor:"1,keyasint"`
	Type      uint16 `cbor:"2,keyasint"`
	Raw       []byte `cbor:"3,keyasint"`
}

// Writer appends records to a capture file.
type Writer struct {
	f   *os.File
	enc *cbor.Encoder
}

// NewWriter opens (or creates) a capture file for appending.
func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}
	return &Writer{f: f, enc: cbor.NewEncoder(f)}, nil
}

// Write appends one record.
func (w *Writer) Write(rec Record) error {
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("encode capture record: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	return w.f.Close()
}

// Reader decodes records from a capture file.
type Reader struct {
	f   *os.File
	dec *cbor.Decoder
}

// OpenReader opens a capture file for reading.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}
	return &Reader{f: f, dec: cbor.NewDecoder(f)}, nil
}

// Next returns the next record, or io.EOF at end of file.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Close closes the file.
func (r *Reader) Close() error {
	return r.f.Close()
}
