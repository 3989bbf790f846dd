// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

// Package config loads the bridge's TOML configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/saltline/poolbridge/pkg/goldline"
)

// Config is the bridge daemon configuration.
type Config struct {
	SerialPort      string `toml:"serial_port"`
	BaudRate        int    `toml:"baud_rate"`
	ListenAddr      string `toml:"listen_addr"`
	CommandAttempts int    `toml:"command_attempts"`
	LogLevel        string `toml:"log_level"`
}

// Default returns the built-in configuration. The controller bus runs at
// 19200 baud.
func Default() Config {
	return Config{
		BaudRate:        19200,
		ListenAddr:      ":8129",
		CommandAttempts: goldline.DefaultAttempts,
		LogLevel:        "info",
	}
}

// Load reads a TOML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the bridge cannot run with.
func (c Config) Validate() error {
	if c.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive, got %d", c.BaudRate)
	}
	if c.CommandAttempts <= 0 {
		return fmt.Errorf("command_attempts must be positive, got %d", c.CommandAttempts)
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("listen_addr is required")
	}
	return nil
}
