package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/avelis/bazaar/internal/auth"
	"github.com/avelis/bazaar/internal/store"
)

// Close reasons for a failed handshake.
const (
	closeNoCredential      = "no credential"
	closeInvalidCredential = "invalid credential"
)

// Hub tracks which users are currently reachable over a live connection and
// routes messages between them. It holds at most one connection per user id;
// registering again for the same user silently replaces the previous entry.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*Client

	store    store.Store
	tokens   *auth.Tokens
	upgrader websocket.Upgrader
}

func NewHub(st store.Store, tokens *auth.Tokens, allowedOrigins []string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return &Hub{
		clients: make(map[string]*Client),
		store:   st,
		tokens:  tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// ServeWs upgrades the HTTP request and runs the connection handshake. The
// bearer credential is expected in the "token" query parameter; a missing or
// invalid credential closes the socket with a policy-violation code before
// any event is processed.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		closeWithReason(conn, closeNoCredential)
		return
	}
	userID, err := h.tokens.Verify(token)
	if err != nil {
		closeWithReason(conn, closeInvalidCredential)
		return
	}

	client := newClient(h, conn, userID)
	h.register(client)
	go client.writePump()
	go client.readPump()
}

func closeWithReason(conn *websocket.Conn, reason string) {
	deadline := time.Now().Add(writeWait)
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
	_ = conn.Close()
}

// register stores the client as the user's current connection, replacing any
// previous one. The superseded connection keeps running until its own close;
// its eventual unregister is a no-op because the map no longer points at it.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.userID] = c
	h.mu.Unlock()
}

// lookup returns the user's current connection, or nil.
func (h *Hub) lookup(userID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clients[userID]
}

// unregister removes the mapping only if c is still the registered
// connection, so a stale close event cannot evict a newer connection for the
// same user.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if h.clients[c.userID] == c {
		delete(h.clients, c.userID)
	}
	h.mu.Unlock()
}
