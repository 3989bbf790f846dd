// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Saltline Works

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saltline/poolbridge/internal/config"
)

var (
	cfgPath  string
	portName string
	baudRate int
)

var rootCmd = &cobra.Command{
	Use:   "poolbridge",
	Short: "Goldline pool controller bus bridge",
	Long: `Poolbridge - a bridge between a Goldline pool/spa controller's serial bus
and a supervisory front end.

The bridge decodes display and indicator-LED frames into a device state
model, pushes state changes to front ends over websockets, and injects
remote key presses onto the shared bus using the controller's keep-alive
cadence as the transmission slot.

Connection is configured with --port and --baud, or through a TOML config
file passed with --config.`,
	Version: "1.2.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to TOML config file")
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 0, "Baud rate (overrides config)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig merges the config file, defaults, and flag overrides.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return config.Config{}, err
		}
	}
	if portName != "" {
		cfg.SerialPort = portName
	}
	if baudRate != 0 {
		cfg.BaudRate = baudRate
	}
	return cfg, nil
}

// requireSerialPort is the common guard for commands that need the bus.
func requireSerialPort(cfg config.Config) error {
	if cfg.SerialPort == "" {
		return fmt.Errorf("a serial port is required (--port or serial_port in config)")
	}
	return nil
}
