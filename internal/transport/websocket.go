package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	applog "github.com/C0D3-M4513R/visualizer2/internal/log"
)

// WebSocketTransport broadcasts analysis payloads as JSON to every connected
// renderer client. Slow consumers never stall the publisher: payloads go
// through a buffered channel and are dropped when it is full.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan any
	server    *http.Server
}

// NewWebSocketTransport starts an HTTP server on addr serving websocket
// upgrades at /spectrum and returns the running transport.
func NewWebSocketTransport(addr string) *WebSocketTransport {
	t := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local visualization tool, any origin may watch.
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
	}
	t.start()
	return t
}

func (t *WebSocketTransport) start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/spectrum", t.handleWebSocket)

	t.server = &http.Server{
		Addr:    t.addr,
		Handler: mux,
	}

	go func() {
		applog.Infof("transport: websocket server listening on %s", t.addr)
		if err := t.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("transport: websocket server error: %v", err)
		}
	}()

	go t.handleBroadcasts()
}

func (t *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("transport: websocket upgrade error: %v", err)
		return
	}

	t.clientsMu.Lock()
	t.clients[conn] = true
	total := len(t.clients)
	t.clientsMu.Unlock()
	applog.Infof("transport: renderer connected, total: %d", total)

	// Watch for the peer closing; clients never send payloads.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				t.clientsMu.Lock()
				delete(t.clients, conn)
				total := len(t.clients)
				t.clientsMu.Unlock()
				conn.Close()
				applog.Infof("transport: renderer disconnected, total: %d", total)
				return
			}
		}
	}()
}

func (t *WebSocketTransport) handleBroadcasts() {
	for data := range t.broadcast {
		t.clientsMu.Lock()
		for client := range t.clients {
			if err := client.WriteJSON(data); err != nil {
				applog.Errorf("transport: dropping renderer client: %v", err)
				client.Close()
				delete(t.clients, client)
			}
		}
		t.clientsMu.Unlock()
	}
}

// Send queues data for broadcast. When the queue is full the payload is
// dropped; the next tick brings fresher data anyway.
func (t *WebSocketTransport) Send(data any) error {
	select {
	case t.broadcast <- data:
	default:
	}
	return nil
}

// Close disconnects all clients and shuts the server down.
func (t *WebSocketTransport) Close() error {
	t.clientsMu.Lock()
	for client := range t.clients {
		client.Close()
	}
	t.clients = make(map[*websocket.Conn]bool)
	t.clientsMu.Unlock()

	if t.server != nil {
		return t.server.Close()
	}
	return nil
}

var _ Transport = (*WebSocketTransport)(nil)
