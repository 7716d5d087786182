package server

import (
	"encoding/json"
	"net/http"
	"time"

	"TuneFM/logger"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// LibraryEvent notifies connected clients that the song catalog changed,
// so they can refetch instead of polling.
type LibraryEvent struct {
	Type  string `json:"type"`
	Added int    `json:"added"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans library events out to every connected websocket client. All
// client bookkeeping happens on the Run goroutine.
type Hub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{}
}

// NewHub creates a hub. Call Run on its own goroutine before serving.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			return

		case conn := <-h.register:
			h.clients[conn] = true
			logger.Debug("websocket client connected", logger.Int("clients", len(h.clients)))

		case conn := <-h.unregister:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}

		case payload := <-h.broadcast:
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					delete(h.clients, conn)
					conn.Close()
				}
			}
		}
	}
}

// Stop disconnects every client and ends the Run loop.
func (h *Hub) Stop() {
	close(h.done)
}

// BroadcastLibraryUpdate tells every client that songs were added.
func (h *Hub) BroadcastLibraryUpdate(added int) {
	payload, err := json.Marshal(LibraryEvent{Type: "library:updated", Added: added})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		logger.Warn("dropping library event, broadcast queue full")
	}
}

// ServeWS upgrades the request and registers the connection. Clients only
// listen; inbound messages are drained and discarded.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logger.ErrorField(err))
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
