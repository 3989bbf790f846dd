// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

package goldline

import "github.com/rs/zerolog"

// StateModel receives decoded frame payloads from the dispatcher. The
// semantic decoding of display and LED data lives with the model, not here.
type StateModel interface {
	ApplyDisplay(payload []byte)
	ApplyLEDs(payload []byte)
}

// Dispatcher classifies validated frames by type code and routes them.
type Dispatcher struct {
	handshake *Handshake
	model     StateModel
	log       zerolog.Logger
}

// NewDispatcher creates a dispatcher feeding model and handshake.
func NewDispatcher(handshake *Handshake, model StateModel, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{handshake: handshake, model: model, log: log}
}

// Dispatch routes one validated frame. Keep-alives feed the handshake's
// heartbeat count; everything else resets it before being decoded, so the
// two-heartbeat slot rule only ever sees consecutive keep-alives.
func (d *Dispatcher) Dispatch(frameType uint16, payload []byte) {
	if frameType == FrameKeepAlive {
		d.handshake.OnHeartbeat()
		return
	}

	d.handshake.ResetBeats()

	switch frameType {
	case FrameDisplay, FrameDisplayService:
		d.model.ApplyDisplay(payload)
	case FrameLEDs:
		d.model.ApplyLEDs(payload)
	case FrameServiceMode:
		d.log.Info().Hex("payload", payload).Msg("service mode update")
	case FrameLocalKey:
		// Keypresses made on the controller's own panel. Observed for
		// diagnosis only.
		d.log.Debug().Hex("payload", payload).Msg("local keypad event")
	default:
		// The bus carries frame types this bridge does not act on.
		d.log.Info().Uint16("type", frameType).Hex("payload", payload).Msg("unknown frame type")
	}
}
