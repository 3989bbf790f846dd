// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

// Package model holds the in-memory device state observed from the bus.
package model

import (
	"encoding/binary"
	"encoding/json"
	"strings"
	"time"

	"github.com/saltline/poolbridge/pkg/goldline"
)

// ledOrder maps LED bitmask bit positions to parameter names, lowest bit
// first. The LED frame carries a lit mask and a blink mask; bits beyond
// this list are ignored.
var ledOrder = []string{
	"heater1",
	"valve3",
	"check-system",
	"pool",
	"spa",
	"filter",
	"lights",
	"aux1",
	"aux2",
	"service",
	"aux3",
	"aux4",
	"aux5",
	"super-chlorinate",
	"system-off",
	"spillover",
}

// PoolModel is the observed state of the pool controller: parameter states
// decoded from LED frames, the panel display text, a freshness timestamp,
// and a version tag front ends must echo back with commands.
//
// The model is confined to the bridge goroutine; other goroutines only see
// serialized snapshots.
type PoolModel struct {
	parameters map[string]string
	display    string
	version    int
	lastUpdate time.Time
	dirty      bool
}

// Snapshot is the JSON shape pushed to front ends.
type Snapshot struct {
	Version    int               `json:"version"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Display    string            `json:"display"`
	Parameters map[string]string `json:"parameters"`
}

// New creates a model with every known parameter in the INIT state.
func New() *PoolModel {
	params := make(map[string]string, len(ledOrder))
	for _, name := range ledOrder {
		params[name] = goldline.ParamInit
	}
	return &PoolModel{parameters: params}
}

// ApplyDisplay decodes a display frame payload. The panel sets the high
// bit on characters it renders blinking; only the character matters here.
func (m *PoolModel) ApplyDisplay(payload []byte) {
	var b strings.Builder
	for _, c := range payload {
		c &= 0x7F
		if c == 0 {
			continue
		}
		b.WriteByte(c)
	}
	text := strings.TrimSpace(b.String())

	m.lastUpdate = time.Now()
	if text != m.display {
		m.display = text
		m.bump()
	}
}

// ApplyLEDs decodes an indicator-LED frame payload: a 32-bit lit mask
// followed by a 32-bit blink mask. Short payloads are ignored; the next
// LED frame is at most a couple of seconds away.
func (m *PoolModel) ApplyLEDs(payload []byte) {
	if len(payload) < 8 {
		return
	}
	lit := binary.BigEndian.Uint32(payload[0:4])
	blink := binary.BigEndian.Uint32(payload[4:8])

	changed := false
	for i, name := range ledOrder {
		var state string
		switch {
		case blink&(1<<uint(i)) != 0:
			state = goldline.ParamBlink
		case lit&(1<<uint(i)) != 0:
			state = goldline.ParamOn
		default:
			state = goldline.ParamOff
		}
		if m.parameters[name] != state {
			m.parameters[name] = state
			changed = true
		}
	}

	m.lastUpdate = time.Now()
	if changed {
		m.bump()
	}
}

func (m *PoolModel) bump() {
	m.version++
	m.dirty = true
}

// ParameterState returns the observed state for a parameter, or INIT for
// parameters never seen.
func (m *PoolModel) ParameterState(name string) string {
	if state, ok := m.parameters[name]; ok {
		return state
	}
	return goldline.ParamInit
}

// LastUpdate returns the freshness timestamp: when the model last absorbed
// a decoded frame, whether or not anything changed.
func (m *PoolModel) LastUpdate() time.Time {
	return m.lastUpdate
}

// Version returns the model's version tag. It advances on every visible
// state change.
func (m *PoolModel) Version() int {
	return m.version
}

// Display returns the current panel display text.
func (m *PoolModel) Display() string {
	return m.display
}

// Dirty reports whether a state change is waiting to be pushed.
func (m *PoolModel) Dirty() bool {
	return m.dirty
}

// MarkDirty forces a push on the next cycle.
func (m *PoolModel) MarkDirty() {
	m.dirty = true
}

// ClearDirty acknowledges that the pending change has been pushed.
func (m *PoolModel) ClearDirty() {
	m.dirty = false
}

// Parameters returns a copy of the parameter state map.
func (m *PoolModel) Parameters() map[string]string {
	out := make(map[string]string, len(m.parameters))
	for k, v := range m.parameters {
		out[k] = v
	}
	return out
}

// MarshalSnapshot serializes the model for the push channel.
func (m *PoolModel) MarshalSnapshot() ([]byte, error) {
	return json.Marshal(Snapshot{
		Version:    m.version,
		UpdatedAt:  m.lastUpdate,
		Display:    m.display,
		Parameters: m.Parameters(),
	})
}
