package handlers

import (
	"chatstats-backend/internal/services"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// stateFrame is the first frame sent on a new connection.
type stateFrame struct {
	Type  string          `json:"type"`
	State *services.State `json:"state"`
}

// EventsHandler streams session events to the UI over a WebSocket.
type EventsHandler struct {
	session  *services.ChatSession
	upgrader websocket.Upgrader
}

// NewEventsHandler creates an EventsHandler. Cross-origin upgrades are accepted
// only from allowedOrigins; with none configured, only same-origin requests are.
func NewEventsHandler(session *services.ChatSession, allowedOrigins []string) *EventsHandler {
	h := &EventsHandler{session: session}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(allowedOrigins) > 0 {
		h.upgrader.CheckOrigin = originChecker(allowedOrigins)
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// HandleEvents upgrades the connection, sends the current state and then
// forwards every session event until the client goes away.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		log.Printf("WARN [EventsHandler] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.session.Subscribe()
	defer cancel()

	state, err := h.session.State(r.Context())
	if err != nil {
		log.Printf("ERROR [EventsHandler] Failed to read session state: %v", err)
		return
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(stateFrame{Type: "state", State: state}); err != nil {
		return
	}

	// The reader only exists to process pongs and notice the peer closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("WARN [EventsHandler] Write failed, closing stream: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
