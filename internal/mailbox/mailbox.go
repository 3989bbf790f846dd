// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

// Package mailbox provides the single-slot inbound command queue between
// the push transport and the bridge cycle. The handshake machine manages
// one command at a time, so a second request is rejected rather than
// buffered.
package mailbox

import "sync"

// Request is an inbound command from a front end. Version is the model
// version tag the front end rendered; the bridge rejects stale requests.
type Request struct {
	Command string `json:"command"`
	Version int    `json:"version"`
}

// Mailbox is a mutex-guarded single-slot queue. The websocket server
// offers from its own goroutines; the bridge takes from its cycle.
type Mailbox struct {
	mu  sync.Mutex
	req *Request
}

// New creates an empty mailbox.
func New() *Mailbox {
	return &Mailbox{}
}

// Offer places a request in the slot. It returns false when the slot is
// occupied; the caller reports busy to the originator.
func (m *Mailbox) Offer(req Request) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.req != nil {
		return false
	}
	m.req = &req
	return true
}

// Take removes and returns the pending request, if any.
func (m *Mailbox) Take() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.req == nil {
		return Request{}, false
	}
	req := *m.req
	m.req = nil
	return req, true
}
