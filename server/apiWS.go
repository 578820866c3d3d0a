package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// httpWebSocket subscribes the caller to decision updates. Each newly
// published SignalDecision is pushed as one JSON message.
func (s *Server) httpWebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error to the client
		s.Log.Warnf("Websocket upgrade failed: %v", err)
		return
	}
	s.Hub.Add(conn)
	// Drain (and discard) client messages so we notice disconnects
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.Hub.Remove(conn)
				return
			}
		}
	}()
}
