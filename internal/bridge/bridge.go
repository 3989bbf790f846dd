// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

// Package bridge drives the cooperative bridge cycle: bytes from the bus
// into frames, frames into model updates, model updates into push
// notifications, and inbound commands into the bus handshake.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/saltline/poolbridge/internal/mailbox"
	"github.com/saltline/poolbridge/internal/model"
	"github.com/saltline/poolbridge/pkg/goldline"
)

// Notifier receives serialized model snapshots, at most once per state
// change.
type Notifier interface {
	Publish(snapshot []byte)
}

// Bridge owns the protocol components and runs them in a single
// cooperative loop. Each phase of a cycle processes at most one unit of
// work (one byte, one frame, one command request) so no responsibility can
// starve the others and latency per cycle stays bounded.
type Bridge struct {
	bus        BusPort
	framer     *goldline.Framer
	handshake  *goldline.Handshake
	dispatcher *goldline.Dispatcher
	model      *model.PoolModel
	mailbox    *mailbox.Mailbox
	notify     Notifier
	attempts   int
	log        zerolog.Logger
}

// New wires a bridge around the given transport, model, mailbox and
// notifier. attempts is the transmission budget for confirm commands.
func New(bus BusPort, m *model.PoolModel, box *mailbox.Mailbox, notify Notifier, attempts int, log zerolog.Logger) *Bridge {
	if attempts <= 0 {
		attempts = goldline.DefaultAttempts
	}
	handshake := goldline.NewHandshake(bus, m, log)
	return &Bridge{
		bus:        bus,
		framer:     goldline.NewFramer(),
		handshake:  handshake,
		dispatcher: goldline.NewDispatcher(handshake, m, log),
		model:      m,
		mailbox:    box,
		notify:     notify,
		attempts:   attempts,
		log:        log,
	}
}

// Handshake exposes the command handshake for one-shot drivers.
func (b *Bridge) Handshake() *goldline.Handshake {
	return b.handshake
}

// Run cycles until the context is cancelled. The loop sleeps briefly when
// a cycle had nothing to do, to avoid spinning on an idle bus.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if idle := b.Cycle(); idle {
			time.Sleep(time.Millisecond)
		}
	}
}

// Cycle performs one pass over the bridge's responsibilities. It returns
// true when no bus input was available.
func (b *Bridge) Cycle() bool {
	read := b.readBus()
	parsed := b.parseFrame()
	b.checkCommand()
	b.publishModel()
	b.fetchCommand()
	return !read && !parsed
}

// readBus feeds at most one byte into the framer. A completed but
// unconsumed frame blocks intake until parseFrame drains it.
func (b *Bridge) readBus() bool {
	if b.framer.HasFrame() {
		return false
	}
	if !b.bus.HasData() {
		return false
	}
	c, err := b.bus.ReadByte()
	if err != nil {
		if !errors.Is(err, ErrNoData) {
			b.log.Debug().Err(err).Msg("bus read")
		}
		return false
	}
	if _, err := b.framer.Feed(c); err != nil {
		b.log.Warn().Err(err).Msg("framer resynchronized")
	}
	return true
}

// parseFrame validates and dispatches a completed frame. Rejected frames
// are logged and dropped; the framer has already been reset, so the next
// cycle resumes seeking a start delimiter. No bus error is fatal here.
func (b *Bridge) parseFrame() bool {
	if !b.framer.HasFrame() {
		return false
	}
	frame := b.framer.Frame()
	b.framer.Reset()

	frameType, payload, err := goldline.Validate(frame)
	if err != nil {
		var rej *goldline.RejectError
		if errors.As(err, &rej) {
			b.log.Warn().Str("reason", rej.Reason.String()).Msg(rej.Message)
		} else {
			b.log.Warn().Err(err).Msg("frame rejected")
		}
		return true
	}

	b.dispatcher.Dispatch(frameType, payload)
	return true
}

// checkCommand advances the handshake confirmation cycle against the
// latest observed state. A confirmed command is a state change the front
// end should hear about.
func (b *Bridge) checkCommand() {
	if b.handshake.Check() == goldline.OutcomeConfirmed {
		b.model.MarkDirty()
	}
}

// publishModel pushes one snapshot per state change.
func (b *Bridge) publishModel() {
	if !b.model.Dirty() {
		return
	}
	snapshot, err := b.model.MarshalSnapshot()
	if err != nil {
		b.log.Error().Err(err).Msg("snapshot marshal failed")
		b.model.ClearDirty()
		return
	}
	b.notify.Publish(snapshot)
	b.model.ClearDirty()
}

// fetchCommand accepts at most one new command request per cycle, and only
// while no command is in flight.
func (b *Bridge) fetchCommand() {
	if b.handshake.InFlight() {
		return
	}
	req, ok := b.mailbox.Take()
	if !ok {
		return
	}
	if err := b.AcceptRequest(req); err != nil {
		// Invalid commands are logged and discarded; the bus never
		// hears about them.
		b.log.Error().Err(err).Str("command", req.Command).Int("version", req.Version).Msg("invalid command")
	}
}

// AcceptRequest validates an inbound request and arms the handshake.
func (b *Bridge) AcceptRequest(req mailbox.Request) error {
	if req.Version != b.model.Version() {
		return fmt.Errorf("version mismatch: model is %d, request is %d", b.model.Version(), req.Version)
	}

	id := req.Command
	if id == "pool-spa-spillover" {
		// One physical key cycles three modes; resolve which mode the
		// press is leaving from current LED state.
		switch {
		case b.model.ParameterState("pool") == goldline.ParamOn:
			id = "pool"
		case b.model.ParameterState("spa") == goldline.ParamOn:
			id = "spa"
		default:
			id = "spillover"
		}
	}

	cmd, ok := goldline.LookupCommand(id)
	if !ok {
		return fmt.Errorf("unknown command %q", id)
	}

	frame := goldline.NewKeyFrame(cmd.Code)
	if !cmd.Confirm {
		return b.handshake.Arm(cmd.ID, "", frame, false, 1)
	}

	current := b.model.ParameterState(cmd.ID)
	if current == goldline.ParamInit {
		return fmt.Errorf("parameter %q has no observed state yet", cmd.ID)
	}
	target := goldline.NextToggleState(cmd.ID, current)
	return b.handshake.Arm(cmd.ID, target, frame, true, b.attempts)
}
