// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

package goldline

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ErrBusy is returned by Arm while a command is already in flight. The
// caller retries later; there is no preemption.
var ErrBusy = errors.New("goldline: command already in flight")

// BusWriter transmits a fully framed byte sequence onto the bus.
type BusWriter interface {
	WriteFrame(frame []byte) error
}

// StateSource exposes observed device state for confirmation checks. The
// handshake never mutates it except indirectly, via bus commands.
type StateSource interface {
	ParameterState(name string) string
	LastUpdate() time.Time
}

// HandshakeState is the lifecycle position of the outbound command.
type HandshakeState int

const (
	// StateIdle: no command in flight.
	StateIdle HandshakeState = iota
	// StateAwaitingSlot: armed, waiting for two consecutive keep-alives.
	StateAwaitingSlot
	// StateTransmitted: sent, waiting for the effect to appear in
	// observed device state.
	StateTransmitted
)

// Outcome is the result of a confirmation check.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeConfirmed
	OutcomeRetrying
	OutcomeAbandoned
)

// Handshake arbitrates outbound command frames onto the shared bus.
//
// The bus is multi-drop and half-duplex with no transmit lock: the only
// safe injection point is the window after the controller's keep-alive.
// Because another device may already be answering the keep-alive that was
// in flight when a command was armed, the handshake transmits only on the
// second consecutive keep-alive observed while armed. Any other frame in
// between restarts the wait.
type Handshake struct {
	bus   BusWriter
	model StateSource
	log   zerolog.Logger

	state             HandshakeState
	slotGranted       bool
	confirm           bool
	beats             int
	attemptsRemaining int
	parameter         string
	target            string
	frame             []byte
	lastObserved      time.Time
}

// NewHandshake creates an idle handshake machine writing to bus and
// confirming against model.
func NewHandshake(bus BusWriter, model StateSource, log zerolog.Logger) *Handshake {
	return &Handshake{bus: bus, model: model, log: log}
}

// Arm accepts a new outbound command. frame is the fully encoded wire
// frame. For confirm commands the effect on parameter is verified against
// target, retransmitting up to attempts times in total. Returns ErrBusy if
// a command is already in flight.
func (h *Handshake) Arm(parameter, target string, frame []byte, confirm bool, attempts int) error {
	if h.state != StateIdle {
		return ErrBusy
	}
	h.state = StateAwaitingSlot
	h.confirm = confirm
	h.beats = 0
	h.attemptsRemaining = attempts
	h.parameter = parameter
	h.target = target
	h.frame = frame
	h.log.Info().
		Str("parameter", parameter).
		Str("target", target).
		Bool("confirm", confirm).
		Int("attempts", attempts).
		Msg("command armed")
	return nil
}

// OnHeartbeat records one keep-alive frame. While awaiting a slot, the
// second consecutive heartbeat grants transmission; the first one is
// ignored because it may already have been in flight when the command was
// armed.
func (h *Handshake) OnHeartbeat() {
	h.beats++
	if h.state != StateAwaitingSlot {
		return
	}
	if h.beats < slotBeats {
		return
	}
	h.slotGranted = true
	h.transmit()
}

// ResetBeats zeroes the consecutive-heartbeat count. The dispatcher calls
// this for every non-keep-alive frame; the pair must be consecutive.
func (h *Handshake) ResetBeats() {
	h.beats = 0
}

// Beats returns the current consecutive-heartbeat count.
func (h *Handshake) Beats() int {
	return h.beats
}

// State returns the current lifecycle state.
func (h *Handshake) State() HandshakeState {
	return h.state
}

// InFlight reports whether a command occupies the machine.
func (h *Handshake) InFlight() bool {
	return h.state != StateIdle
}

// Parameter returns the armed target parameter, empty when idle.
func (h *Handshake) Parameter() string {
	return h.parameter
}

func (h *Handshake) transmit() {
	h.slotGranted = false
	h.attemptsRemaining--
	if err := h.bus.WriteFrame(h.frame); err != nil {
		// A write failure is recovered like any other bus fault: log
		// and let the confirmation cycle retry or abandon.
		h.log.Error().Err(err).Str("parameter", h.parameter).Msg("frame write failed")
	} else {
		h.log.Info().
			Str("parameter", h.parameter).
			Int("attempts_remaining", h.attemptsRemaining).
			Msg("command transmitted")
	}

	if !h.confirm {
		// Fire-and-forget: no retry, no confirmation wait.
		h.clear()
		return
	}

	// Low-water mark: only state observed after this counts as evidence.
	h.lastObserved = h.model.LastUpdate()
	h.beats = 0
	h.state = StateTransmitted
}

// Check compares freshly observed device state against the armed target.
// It only acts when the model has been updated since the last transmission.
func (h *Handshake) Check() Outcome {
	if h.state != StateTransmitted {
		return OutcomeNone
	}
	ts := h.model.LastUpdate()
	if !ts.After(h.lastObserved) {
		return OutcomeNone
	}

	if h.model.ParameterState(h.parameter) == h.target {
		h.log.Info().Str("parameter", h.parameter).Str("target", h.target).Msg("command confirmed")
		h.clear()
		return OutcomeConfirmed
	}

	if h.attemptsRemaining <= 0 {
		h.log.Warn().Str("parameter", h.parameter).Str("target", h.target).Msg("command abandoned, attempts exhausted")
		h.clear()
		return OutcomeAbandoned
	}

	// Not there yet: restart the slot wait and try again.
	h.lastObserved = ts
	h.beats = 0
	h.state = StateAwaitingSlot
	return OutcomeRetrying
}

func (h *Handshake) clear() {
	h.state = StateIdle
	h.slotGranted = false
	h.confirm = false
	h.beats = 0
	h.attemptsRemaining = 0
	h.parameter = ""
	h.target = ""
	h.frame = nil
	h.lastObserved = time.Time{}
}
