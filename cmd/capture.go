// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Saltline Works

package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/saltline/poolbridge/internal/bridge"
	"github.com/saltline/poolbridge/internal/capture"
	"github.com/saltline/poolbridge/pkg/goldline"
)

var captureOutput string

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record validated bus frames to a capture file",
	Long: `Record every validated bus frame to a CBOR capture file for offline
replay and diagnosis. The raw wire bytes are preserved, stuffing included,
so a replay exercises the full framing pipeline.`,
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "poolbus.capture", "Capture file path")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireSerialPort(cfg); err != nil {
		return err
	}

	bus, err := bridge.OpenSerialBus(cfg.SerialPort, cfg.BaudRate)
	if err != nil {
		return err
	}
	defer bus.Close()

	w, err := capture.NewWriter(captureOutput)
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Printf("Poolbridge - Frame Capture\n")
	fmt.Printf("Port: %s @ %d baud -> %s\n", cfg.SerialPort, cfg.BaudRate, captureOutput)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	framer := goldline.NewFramer()
	frames := 0

	for {
		if !bus.HasData() {
			time.Sleep(time.Millisecond)
			continue
		}
		b, err := bus.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			continue
		}

		ready, err := framer.Feed(b)
		if err != nil {
			fmt.Printf("[ERROR] %v\n", err)
			continue
		}
		if !ready {
			continue
		}

		frame := framer.Frame()
		framer.Reset()

		frameType, _, err := goldline.Validate(frame)
		if err != nil {
			fmt.Printf("[REJECT] %v\n", err)
			continue
		}

		if err := w.Write(capture.Record{
			UnixMicro: time.Now().UnixMicro(),
			Type:      frameType,
			Raw:       frame,
		}); err != nil {
			return err
		}

		frames++
		if frames%100 == 0 {
			fmt.Printf("captured %d frames\n", frames)
		}
	}
}
