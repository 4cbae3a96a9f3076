// Package devserver is the push channel behind `neoc watch`: a small
// WebSocket hub that broadcasts each recompile's result (success or
// diagnostics) to every connected browser client.
//
// Grounded on a mutex-protected client-map broadcast pattern used
// elsewhere in this module family's WebSocket support, adapted from a
// polling client registry into a connect/broadcast/disconnect hub.
package devserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// BuildEvent is one compile result broadcast to connected clients.
type BuildEvent struct {
	SourceName  string   `json:"source"`
	Success     bool     `json:"success"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	ScriptBytes int      `json:"script_bytes,omitempty"`
}

// Hub tracks connected watch clients and broadcasts build events to all of
// them. The zero value is not usable; construct with New.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	nextID  int
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// New returns an empty Hub ready to accept connections.
func New() *Hub {
	return &Hub{clients: map[string]*client{}}
}

// ServeHTTP upgrades the request to a WebSocket connection and registers
// it as a watch client until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	clientID := clientKey(id)
	h.clients[clientID] = &client{conn: conn}
	h.mu.Unlock()

	defer h.disconnect(clientID)

	// Drain and discard incoming frames; this hub is push-only, but the
	// read loop must run so gorilla/websocket services control frames
	// (ping/pong/close) and detects the peer going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) disconnect(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

// Broadcast sends event as JSON to every connected client, dropping and
// disconnecting any client whose write fails rather than letting one dead
// connection block the others.
func (h *Hub) Broadcast(event BuildEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make(map[string]*client, len(h.clients))
	for id, c := range h.clients {
		targets[id] = c
	}
	h.mu.RUnlock()

	for id, c := range targets {
		c.mu.Lock()
		err := c.conn.WriteMessage(websocket.TextMessage, payload)
		c.mu.Unlock()
		if err != nil {
			h.disconnect(id)
		}
	}
	return nil
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func clientKey(id int) string {
	return "client-" + strconv.Itoa(id)
}
