package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// sendBuffer bounds the per-client queue; a client that cannot keep
	// up misses pings, which is harmless since they carry no payload.
	sendBuffer = 8
)

// update is the wire form of a change notification. It names the part of
// the engine that changed and nothing else; clients re-query state.
type update struct {
	Event string `json:"event"`
}

// Hub pushes payload-free change notifications to connected websocket
// clients. It subscribes to the engine's change events and fans each one
// out as a small JSON ping.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

// NewHub creates a hub with no connected clients.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[chan []byte]struct{}),
	}
}

// Broadcast queues an event ping for every connected client. Slow
// clients are skipped rather than blocked on.
func (h *Hub) Broadcast(event string) {
	msg, err := json.Marshal(update{Event: event})
	if err != nil {
		h.log.Error("failed to encode update", "event", event, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams updates until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}

	send := make(chan []byte, sendBuffer)
	h.register(send)

	done := make(chan struct{})

	// Writer: drains the send queue until the reader signals close.
	go func() {
		for {
			select {
			case msg, ok := <-send:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Reader: clients send nothing meaningful; this loop only detects
	// disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(done)
	h.unregister(send)
	conn.Close()
}

func (h *Hub) register(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[ch] = struct{}{}
}

func (h *Hub) unregister(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, ch)
}
