// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"spectro/internal/log"
)

// WebSocketTransport broadcasts events to every connected WebSocket
// client. Slow clients cannot stall the pipeline: the broadcast queue is
// bounded and drops on overflow, and a client that errors on write is
// disconnected.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	server    *http.Server

	closeOnce sync.Once
	done      chan struct{}
}

// NewWebSocketTransport starts an HTTP server on addr serving WebSocket
// connections at /events. queueCap bounds the pending broadcasts.
func NewWebSocketTransport(addr string, queueCap int) *WebSocketTransport {
	t := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local visualization clients only
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, queueCap),
		done:      make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/events", t.handleWebSocket)
	t.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Infof("transport: WebSocket server listening on %s", addr)
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("transport: WebSocket server error: %v", err)
		}
	}()
	go t.handleBroadcasts()

	return t
}

func (t *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("transport: WebSocket upgrade error: %v", err)
		return
	}

	t.clientsMu.Lock()
	t.clients[conn] = true
	total := len(t.clients)
	t.clientsMu.Unlock()
	log.Infof("transport: client connected, total: %d", total)

	// Watch for the close handshake; we never expect client data.
	go func() {
		if _, _, err := conn.ReadMessage(); err != nil {
			t.clientsMu.Lock()
			delete(t.clients, conn)
			total := len(t.clients)
			t.clientsMu.Unlock()
			conn.Close()
			log.Infof("transport: client disconnected, total: %d", total)
		}
	}()
}

func (t *WebSocketTransport) handleBroadcasts() {
	for {
		select {
		case data := <-t.broadcast:
			t.clientsMu.Lock()
			for client := range t.clients {
				if err := client.WriteJSON(data); err != nil {
					log.Warnf("transport: dropping client: %v", err)
					client.Close()
					delete(t.clients, client)
				}
			}
			t.clientsMu.Unlock()
		case <-t.done:
			return
		}
	}
}

// Send queues data for broadcast without blocking; on a full queue the
// event is dropped. The broadcast queue is never closed, so Send is safe
// concurrently with (or after) Close; past the shutdown signal it
// discards the event.
func (t *WebSocketTransport) Send(data any) error {
	select {
	case <-t.done:
		return nil
	default:
	}
	select {
	case t.broadcast <- data:
	default:
		log.Debugf("transport: broadcast queue full, dropped event")
	}
	return nil
}

// Close disconnects all clients and shuts down the server.
func (t *WebSocketTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)

		t.clientsMu.Lock()
		for client := range t.clients {
			client.Close()
		}
		t.clients = make(map[*websocket.Conn]bool)
		t.clientsMu.Unlock()

		err = t.server.Close()
	})
	return err
}

var _ Transport = (*WebSocketTransport)(nil)
