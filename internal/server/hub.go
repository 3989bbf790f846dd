// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Saltline Works

// Package server pushes model snapshots to front ends over websockets and
// feeds their command requests into the bridge's mailbox.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/saltline/poolbridge/internal/mailbox"
)

const (
	writeWait      = 10 * time.Second
	clientSendSize = 8
)

// Hub fans model snapshots out to connected clients. Publish is called
// from the bridge goroutine; client registration and reads happen on the
// HTTP server's goroutines, so the client set is mutex-guarded.
type Hub struct {
	box      *mailbox.Mailbox
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// errorReply is sent to a client whose request could not be queued.
type errorReply struct {
	Error string `json:"error"`
}

// NewHub creates a hub feeding the given mailbox.
func NewHub(box *mailbox.Mailbox, log zerolog.Logger) *Hub {
	return &Hub{
		box: box,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The bridge serves a trusted LAN front end.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// Publish broadcasts a snapshot to every connected client and retains it
// for clients that connect later. Slow clients miss intermediate snapshots
// rather than stalling the bridge.
func (h *Hub) Publish(snapshot []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = snapshot
	for c := range h.clients {
		select {
		case c.send <- snapshot:
		default:
		}
	}
}

// ServeHTTP upgrades the connection and runs the client's read loop.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSendSize)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	last := h.last
	h.mu.Unlock()

	h.log.Info().Str("remote", r.RemoteAddr).Msg("client connected")
	if last != nil {
		c.send <- last
	}

	go h.writePump(c)
	h.readPump(c, r.RemoteAddr)
}

func (h *Hub) readPump(c *client, remote string) {
	defer h.drop(c)
	for {
		var req mailbox.Request
		if err := c.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn().Err(err).Str("remote", remote).Msg("client read failed")
			}
			return
		}
		if !h.box.Offer(req) {
			h.log.Warn().Str("command", req.Command).Str("remote", remote).Msg("command dropped, mailbox busy")
			h.reply(c, "busy: a command is already pending")
		}
	}
}

// reply queues an error message for a client. The membership check guards
// against the write pump having dropped the client concurrently: once drop
// runs, the send channel is closed and sending on it would panic.
func (h *Hub) reply(c *client, msg string) {
	data, err := json.Marshal(errorReply{Error: msg})
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(c)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, nil)
}

// drop removes a client and closes its connection. Safe to call from both
// pumps; the second call finds the client already gone.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()
	if ok {
		close(c.send)
		c.conn.Close()
	}
}
