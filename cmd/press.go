// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Saltline Works

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saltline/poolbridge/internal/bridge"
	"github.com/saltline/poolbridge/internal/mailbox"
	"github.com/saltline/poolbridge/internal/model"
	"github.com/saltline/poolbridge/internal/observability"
	"github.com/saltline/poolbridge/pkg/goldline"
)

var pressTimeout time.Duration

var pressCmd = &cobra.Command{
	Use:   "press <command>",
	Short: "Send a single key press onto the bus",
	Long: `Arm and transmit one key press, then exit.

The bridge first observes the bus until the device state model has been
populated, then arms the command and waits for the handshake to complete:
transmitted for menu keys, confirmed or abandoned for equipment toggles.

Command identifiers match the front-end command set, e.g. pool, spa,
filter, lights, menu, plus, minus.`,
	Args: cobra.ExactArgs(1),
	RunE: runPress,
}

func init() {
	pressCmd.Flags().DurationVar(&pressTimeout, "timeout", 60*time.Second, "Give up after this long")
	rootCmd.AddCommand(pressCmd)
}

// noopNotifier drops snapshots; press has no front end to push to.
type noopNotifier struct{}

func (noopNotifier) Publish([]byte) {}

func runPress(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireSerialPort(cfg); err != nil {
		return err
	}

	logger := observability.InitLogger("poolbridge", cfg.LogLevel)

	bus, err := bridge.OpenSerialBus(cfg.SerialPort, cfg.BaudRate)
	if err != nil {
		return err
	}
	defer bus.Close()

	poolModel := model.New()
	box := mailbox.New()
	br := bridge.New(bus, poolModel, box, noopNotifier{}, cfg.CommandAttempts, logger)

	return pressLoop(br, poolModel, box, args[0], pressTimeout)
}

// pressLoop drives bridge cycles until the key press completes or the
// timeout passes. The request is offered only once decoded state has
// arrived, so toggle targets resolve against real LED state instead of
// INIT. A state change can invalidate an offered version tag before the
// bridge consumes the request; when that happens the request is offered
// again with the fresh tag rather than idling out the clock.
func pressLoop(br *bridge.Bridge, poolModel *model.PoolModel, box *mailbox.Mailbox, command string, timeout time.Duration) error {
	if _, ok := goldline.LookupCommand(command); !ok && command != "pool-spa-spillover" {
		return fmt.Errorf("unknown command %q", command)
	}

	deadline := time.Now().Add(timeout)
	offeredVersion := 0
	armed := false

	for time.Now().Before(deadline) {
		idle := br.Cycle()

		if br.Handshake().InFlight() {
			armed = true
		} else if armed {
			fmt.Printf("press %q completed\n", command)
			return nil
		}

		if v := poolModel.Version(); !armed && v > 0 && v != offeredVersion {
			if box.Offer(mailbox.Request{Command: command, Version: v}) {
				offeredVersion = v
			}
		}

		if idle {
			time.Sleep(time.Millisecond)
		}
	}

	return fmt.Errorf("timed out after %s waiting for %q to complete", timeout, command)
}
