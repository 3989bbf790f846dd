// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Saltline Works

package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/saltline/poolbridge/internal/capture"
	"github.com/saltline/poolbridge/pkg/goldline"
)

var replayCmd = &cobra.Command{
	Use:   "replay <capture-file>",
	Short: "Replay a capture file through the framing pipeline",
	Long: `Feed the raw bytes of a capture file back through the framer and
validator, and display each frame. Useful for diagnosing framing problems
away from the live bus.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	r, err := capture.OpenReader(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	framer := goldline.NewFramer()
	frames := 0
	rejects := 0

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read capture record: %w", err)
		}

		for _, b := range rec.Raw {
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
				rejects++
				fmt.Printf("[REJECT] %v\n", err)
				continue
			}
			frames++
			fmt.Print(goldline.FormatFrame(time.UnixMicro(rec.UnixMicro), frameType, payload))
		}
	}

	fmt.Printf("\n%d frames replayed, %d rejected\n", frames, rejects)
	return nil
}
