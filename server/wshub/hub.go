// Package wshub pushes newly published signal decisions to websocket clients,
// so a signal controller UI doesn't have to poll /get_time.
package wshub

import (
	"sync"

	"github.com/cyclopcam/logs"
	"github.com/gorilla/websocket"
	"github.com/pedwatch/pedwatch/server/decision"
)

type Hub struct {
	log     logs.Log
	lock    sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewHub(log logs.Log) *Hub {
	return &Hub{
		log:     log,
		clients: map[*websocket.Conn]bool{},
	}
}

func (h *Hub) Add(conn *websocket.Conn) {
	h.lock.Lock()
	h.clients[conn] = true
	n := len(h.clients)
	h.lock.Unlock()
	h.log.Infof("Websocket client connected. Total: %v", n)
}

func (h *Hub) Remove(conn *websocket.Conn) {
	h.lock.Lock()
	if h.clients[conn] {
		delete(h.clients, conn)
		conn.Close()
	}
	n := len(h.clients)
	h.lock.Unlock()
	h.log.Infof("Websocket client disconnected. Total: %v", n)
}

// BroadcastDecision sends 'd' to every connected client.
// Clients that fail to accept the write are dropped.
func (h *Hub) BroadcastDecision(d decision.SignalDecision) {
	h.lock.Lock()
	defer h.lock.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(&d); err != nil {
			h.log.Warnf("Dropping websocket client: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func (h *Hub) ClientCount() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}
