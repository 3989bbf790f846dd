// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.BaudRate != 19200 {
		t.Errorf("BaudRate = %d, want 19200", cfg.BaudRate)
	}
	if cfg.ListenAddr != ":8129" {
		t.Errorf("ListenAddr = %q, want :8129", cfg.ListenAddr)
	}
	if cfg.CommandAttempts <= 0 {
		t.Errorf("CommandAttempts = %d, want positive", cfg.CommandAttempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poolbridge.toml")
	content := `
serial_port = "/dev/ttyUSB0"
baud_rate = 9600
listen_addr = "127.0.0.1:9000"
command_attempts = 5
log_level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SerialPort != "/dev/ttyUSB0" {
		t.Errorf("SerialPort = %q", cfg.SerialPort)
	}
	if cfg.BaudRate != 9600 {
		t.Errorf("BaudRate = %d, want 9600", cfg.BaudRate)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.CommandAttempts != 5 {
		t.Errorf("CommandAttempts = %d, want 5", cfg.CommandAttempts)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poolbridge.toml")
	if err := os.WriteFile(path, []byte(`serial_port = "/dev/ttyAMA0"`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SerialPort != "/dev/ttyAMA0" {
		t.Errorf("SerialPort = %q", cfg.SerialPort)
	}
	if cfg.BaudRate != 19200 {
		t.Errorf("BaudRate = %d, want default 19200", cfg.BaudRate)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero baud", func(c *Config) { c.BaudRate = 0 }, true},
		{"negative baud", func(c *Config) { c.BaudRate = -1 }, true},
		{"zero attempts", func(c *Config) { c.CommandAttempts = 0 }, true},
		{"blank listen addr", func(c *Config) { c.ListenAddr = "  " }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
