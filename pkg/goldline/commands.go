// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

package goldline

import "encoding/binary"

// Parameter states as observed on the controller's indicator LEDs. INIT
// means the bridge has not yet seen an LED frame for the parameter.
const (
	ParamInit  = "INIT"
	ParamOn    = "ON"
	ParamOff   = "OFF"
	ParamBlink = "BLINK"
)

// Command describes an accepted keypad command. Confirm commands toggle
// equipment whose effect is visible in LED state and must be verified;
// the rest are menu navigation presses that are sent once, blind.
type Command struct {
	ID      string
	Code    uint32
	Confirm bool
}

// Remote keypad key masks.
const (
	KeyRight      = 0x00000001
	KeyMenu       = 0x00000002
	KeyLeft       = 0x00000004
	KeyService    = 0x00000008
	KeyMinus      = 0x00000010
	KeyPlus       = 0x00000020
	KeyPoolSpa    = 0x00000040
	KeyFilter     = 0x00000080
	KeyLights     = 0x00000100
	KeyAux1       = 0x00000200
	KeyAux2       = 0x00000400
	KeyAux3       = 0x00000800
	KeyAux4       = 0x00001000
	KeyAux5       = 0x00002000
	KeyValve3     = 0x00004000
	KeyHeater1    = 0x00008000
	KeySuperChlor = 0x00010000
)

// commandTable maps front-end command identifiers to keypad keys. The
// pool, spa and spillover identifiers share one physical key; the caller
// resolves which of the three is being toggled from current LED state.
var commandTable = map[string]Command{
	// Menu navigation, fire-and-forget.
	"menu":  {ID: "menu", Code: KeyMenu},
	"left":  {ID: "left", Code: KeyLeft},
	"right": {ID: "right", Code: KeyRight},
	"plus":  {ID: "plus", Code: KeyPlus},
	"minus": {ID: "minus", Code: KeyMinus},

	// Equipment toggles, confirmed against LED state.
	"pool":            {ID: "pool", Code: KeyPoolSpa, Confirm: true},
	"spa":             {ID: "spa", Code: KeyPoolSpa, Confirm: true},
	"spillover":       {ID: "spillover", Code: KeyPoolSpa, Confirm: true},
	"filter":          {ID: "filter", Code: KeyFilter, Confirm: true},
	"lights":          {ID: "lights", Code: KeyLights, Confirm: true},
	"heater1":         {ID: "heater1", Code: KeyHeater1, Confirm: true},
	"valve3":          {ID: "valve3", Code: KeyValve3, Confirm: true},
	"super-chlorinate": {ID: "super-chlorinate", Code: KeySuperChlor, Confirm: true},
	"aux1":            {ID: "aux1", Code: KeyAux1, Confirm: true},
	"aux2":            {ID: "aux2", Code: KeyAux2, Confirm: true},
	"aux3":            {ID: "aux3", Code: KeyAux3, Confirm: true},
	"aux4":            {ID: "aux4", Code: KeyAux4, Confirm: true},
	"aux5":            {ID: "aux5", Code: KeyAux5, Confirm: true},
	"service":         {ID: "service", Code: KeyService, Confirm: true},
}

// LookupCommand returns the command definition for a front-end identifier.
func LookupCommand(id string) (Command, bool) {
	cmd, ok := commandTable[id]
	return cmd, ok
}

// NewKeyFrame builds the wire frame for a remote key press. The key mask
// is carried twice so the controller can reject single-copy corruption.
func NewKeyFrame(code uint32) []byte {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint32(payload[0:4], code)
	binary.BigEndian.PutUint32(payload[4:8], code)
	return EncodeFrame(FrameRemoteKey, payload)
}

// NextToggleState computes the desired state for a toggle key from the
// currently observed state. The service key cycles ON, BLINK, OFF; every
// other toggle alternates ON and OFF. The target is resolved once, at arm
// time; it is not re-derived if the observed state changes before the
// frame is transmitted.
func NextToggleState(id, current string) string {
	if id == "service" {
		switch current {
		case ParamOn:
			return ParamBlink
		case ParamBlink:
			return ParamOff
		default:
			return ParamOn
		}
	}
	if current == ParamOn {
		return ParamOff
	}
	return ParamOn
}
