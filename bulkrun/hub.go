// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bulkrun

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// CaseStatus is one progress update pushed to the websocket clients
type CaseStatus struct {
	Ident     string `json:"ident"`
	Map       string `json:"map"`
	State     string `json:"state"` // done or failed
	Error     string `json:"error,omitempty"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Hub maintains the set of active status clients and broadcasts case
// updates to them
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan CaseStatus
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	upgrader   websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan CaseStatus, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Run owns the client set; it is the only goroutine touching it
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = true
		case conn := <-h.unregister:
			if h.clients[conn] {
				delete(h.clients, conn)
				conn.Close()
			}
		case st := <-h.broadcast:
			for conn := range h.clients {
				if err := conn.WriteJSON(&st); err != nil {
					log.WithError(err).Warn("dropping status client")
					delete(h.clients, conn)
					conn.Close()
				}
			}
		}
	}
}

// Broadcast queues a status update for every connected client. Updates are
// dropped when the queue is full rather than stalling the campaign.
func (h *Hub) Broadcast(st CaseStatus) {
	select {
	case h.broadcast <- st:
	default:
	}
}

// serveWs upgrades one status request. Clients only listen; reads serve to
// detect the close.
func (h *Hub) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	h.register <- conn
	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ListenAndServe serves the status endpoint at /ws until the process exits
func (h *Hub) ListenAndServe(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.serveWs)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Error("status server stopped")
	}
}
