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
	"github.com/saltline/poolbridge/pkg/goldline"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display live bus frames in human-readable format",
	Long: `Continuously decode and display Goldline bus frames as they arrive.

Each validated frame is shown with timestamp, frame type, and decoded
payload. Rejected frames are reported with their rejection reason.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("Poolbridge - Bus Monitor\n")
	fmt.Printf("Port: %s @ %d baud\n", cfg.SerialPort, cfg.BaudRate)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	framer := goldline.NewFramer()

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

		frameType, payload, err := goldline.Validate(frame)
		if err != nil {
			fmt.Printf("[REJECT] %v\n", err)
			continue
		}
		fmt.Print(goldline.FormatFrame(time.Now(), frameType, payload))
	}
}
