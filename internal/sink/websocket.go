package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

// WebSocket broadcasts every event to all currently connected clients on
// an /events endpoint. Clients that connect late simply start receiving
// events from that point on; there is no backlog replay.
type WebSocket struct {
	addr string
	srv  *http.Server

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewWebSocket creates a websocket sink listening on addr (e.g. ":8787")
// and starts serving immediately in the background.
func NewWebSocket(addr string) (*WebSocket, error) {
	if addr == "" {
		return nil, fmt.Errorf("websocket sink addr is required")
	}

	w := &WebSocket{
		addr:    addr,
		clients: make(map[*websocket.Conn]struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/events", w.handleWS)
	w.srv = &http.Server{Addr: addr, Handler: mux}

	go func() {
		_ = w.srv.ListenAndServe()
	}()

	return w, nil
}

func (w *WebSocket) handleWS(rw http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(rw, r, nil)
	if err != nil {
		return
	}

	w.mu.Lock()
	w.clients[c] = struct{}{}
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.clients, c)
		w.mu.Unlock()
		c.Close(websocket.StatusNormalClosure, "")
	}()

	// Discard anything the client sends; this is a publish-only feed.
	for {
		if _, _, err := c.Read(r.Context()); err != nil {
			return
		}
	}
}

// Send broadcasts evt as JSON text to every connected client.
func (w *WebSocket) Send(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	for c := range w.clients {
		_ = c.Write(ctx, websocket.MessageText, data)
	}
	return nil
}

// Close shuts down the HTTP server and disconnects all clients.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	for c := range w.clients {
		c.Close(websocket.StatusGoingAway, "shutting down")
	}
	w.clients = make(map[*websocket.Conn]struct{})
	w.mu.Unlock()

	return w.srv.Close()
}

// Name returns the sink identifier.
func (w *WebSocket) Name() string {
	return fmt.Sprintf("websocket:%s", w.addr)
}
