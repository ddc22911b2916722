package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"tourdesk/internal/metrics"
	"tourdesk/internal/utils"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	authTimeout    = 5 * time.Second
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

// AuthFunc validates a session token and returns the operator id and role.
type AuthFunc func(token string) (operatorID int64, role string, err error)

type client struct {
	id         string
	operatorID int64
	role       string
	conn       *websocket.Conn
	send       chan []byte
	hub        *Hub
}

// Hub pushes change notifications to connected calendar views. Clients only
// listen; anything they send besides pongs is discarded.
type Hub struct {
	clients    map[string]*client
	mu         sync.Mutex
	stopped    bool
	done       chan struct{}
	unregister chan *client
	broadcast  chan []byte
	auth       AuthFunc
	upgrader   websocket.Upgrader
}

// NewHub builds a hub. allowedOrigins empty means any origin.
func NewHub(auth AuthFunc, allowedOrigins []string) *Hub {
	h := &Hub{
		clients:    make(map[string]*client),
		done:       make(chan struct{}),
		unregister: make(chan *client, 16),
		broadcast:  make(chan []byte, 256),
		auth:       auth,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			h.stopped = true
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
				metrics.WSClientDisconnected()
			}
			h.mu.Unlock()
			close(h.done)
			utils.LogEvent("", "realtime", "hub_stopped", "websocket hub stopped")
			return

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for id, c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, id)
					metrics.WSClientDisconnected()
				}
			}
			h.mu.Unlock()
		}
	}
}

// add registers c. It refuses once Run has returned.
func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return false
	}
	h.clients[c.id] = c
	h.mu.Unlock()
	metrics.WSClientConnected()
	utils.LogEvent("", "realtime", "client_registered", fmt.Sprintf("client=%s operator_id=%d", c.id, c.operatorID))
	return true
}

// leave hands c to Run for removal, or removes it directly after Run stopped.
func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		h.remove(c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
		metrics.WSClientDisconnected()
	}
	h.mu.Unlock()
}

// ClientCount is the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. Drops when the queue is full.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		utils.LogWarn("", "realtime", "broadcast_dropped", "broadcast channel full")
	}
}

func (h *Hub) BroadcastJSON(v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	return nil
}

// ServeWS upgrades the request. The token comes from ?token= or, failing
// that, from a first {"token":"..."} message sent within authTimeout.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.LogWarn("", "realtime", "ws_upgrade_failed", err.Error())
		return
	}

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		_ = conn.SetReadDeadline(time.Now().Add(authTimeout))
		var authMsg struct {
			Token string `json:"token"`
		}
		if err := conn.ReadJSON(&authMsg); err != nil {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "auth timeout"))
			_ = conn.Close()
			return
		}
		token = authMsg.Token
	}

	operatorID, role, err := h.auth(token)
	if err != nil {
		_ = conn.WriteJSON(map[string]string{"error": "invalid token"})
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid token"))
		_ = conn.Close()
		utils.LogWarn("", "realtime", "ws_auth_invalid_token", err.Error())
		return
	}

	c := &client{
		id:         "ws_" + uuid.NewString(),
		operatorID: operatorID,
		role:       role,
		conn:       conn,
		send:       make(chan []byte, 64),
		hub:        h,
	}
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if !h.add(c) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}
	_ = conn.WriteJSON(map[string]string{"status": "authenticated"})

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				utils.LogWarn("", "realtime", "ws_read_error", c.id+" "+err.Error())
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
