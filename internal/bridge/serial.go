// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

package bridge

import (
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
)

// ErrNoData is returned by ReadByte when the receive buffer is empty.
// Callers are expected to gate reads with HasData.
var ErrNoData = errors.New("bridge: no data available")

// BusPort is the bus transport contract the cycle driver needs: a
// non-blocking read primitive plus whole-frame writes.
type BusPort interface {
	HasData() bool
	ReadByte() (byte, error)
	WriteFrame(frame []byte) error
	Close() error
}

// SerialBus adapts a serial port to BusPort. A pump goroutine drains the
// OS receive buffer into a channel so the bridge cycle never blocks on a
// read.
type SerialBus struct {
	port serial.Port
	data chan byte
}

// OpenSerialBus opens the bus serial port. The controller talks 8N2.
func OpenSerialBus(portName string, baudRate int) (*SerialBus, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.TwoStopBits,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	s := &SerialBus{
		port: port,
		data: make(chan byte, 4096),
	}
	go s.pump()
	return s, nil
}

// pump moves bytes from the port into the receive channel. It exits, and
// closes the channel, when the port read fails (typically on Close).
func (s *SerialBus) pump() {
	defer close(s.data)
	buf := make([]byte, 128)
	for {
		n, err := s.port.Read(buf)
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			select {
			case s.data <- buf[i]:
			default:
				// Receive overflow: the cycle has fallen far behind.
				// Dropping here lets the framer resynchronize on the
				// next start delimiter instead of wedging the port.
			}
		}
	}
}

// HasData reports whether at least one byte is buffered.
func (s *SerialBus) HasData() bool {
	return len(s.data) > 0
}

// ReadByte returns one buffered byte without blocking.
func (s *SerialBus) ReadByte() (byte, error) {
	select {
	case b, ok := <-s.data:
		if !ok {
			return 0, io.EOF
		}
		return b, nil
	default:
		return 0, ErrNoData
	}
}

// WriteFrame writes a complete frame to the bus.
func (s *SerialBus) WriteFrame(frame []byte) error {
	n, err := s.port.Write(frame)
	if err != nil {
		return fmt.Errorf("bus write failed: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("short bus write: %d of %d bytes", n, len(frame))
	}
	return nil
}

// Close closes the port; the pump goroutine exits on its next read.
func (s *SerialBus) Close() error {
	return s.port.Close()
}
