// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Saltline Works

package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saltline/poolbridge/internal/bridge"
	"github.com/saltline/poolbridge/internal/mailbox"
	"github.com/saltline/poolbridge/internal/model"
	"github.com/saltline/poolbridge/internal/observability"
	"github.com/saltline/poolbridge/internal/server"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bridge daemon",
	Long: `Run the bridge: decode bus traffic into the device state model, serve
state snapshots to front ends over websockets, and forward their command
requests onto the bus.

The daemon runs until interrupted.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
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
	hub := server.NewHub(box, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server failed")
		}
	}()

	br := bridge.New(bus, poolModel, box, hub, cfg.CommandAttempts, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("port", cfg.SerialPort).
		Int("baud", cfg.BaudRate).
		Str("listen", cfg.ListenAddr).
		Msg("bridge started")

	err = br.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)

	if errors.Is(err, context.Canceled) {
		logger.Info().Msg("bridge stopped")
		return nil
	}
	return err
}
