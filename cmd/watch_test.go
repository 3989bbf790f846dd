// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Saltline Works

package cmd

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/saltline/poolbridge/internal/bridge"
	"github.com/saltline/poolbridge/internal/mailbox"
	"github.com/saltline/poolbridge/internal/model"
)

func TestCycleUntil_StopsWhenDoneCloses(t *testing.T) {
	bus := &scriptBus{}
	br := bridge.New(bus, model.New(), mailbox.New(), noopNotifier{}, 1, zerolog.Nop())

	done := make(chan struct{})
	stopped := make(chan struct{})
	ticks := make(chan struct{}, 1)

	go func() {
		cycleUntil(br, done, time.Millisecond, func() {
			select {
			case ticks <- struct{}{}:
			default:
			}
		})
		close(stopped)
	}()

	select {
	case <-ticks:
	case <-time.After(5 * time.Second):
		t.Fatal("cycle runner never ticked")
	}

	close(done)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("cycle runner did not stop after done closed")
	}
}
