package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"flockr-server/models"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBuffer     = 256
)

var welcomeMessage = []byte(`{"type":"welcome","payload":{"message":"connected"}}`)

// Authenticator resolves a live session token to its user.
type Authenticator interface {
	Authenticate(token string) (int, error)
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID int
}

// Hub fans board events out to the websocket connections of the users
// they concern. A user may hold several connections at once.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	auth       Authenticator
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
	}
}

// SetAuthenticator must be called before the hub accepts connections.
func (h *Hub) SetAuthenticator(auth Authenticator) {
	h.auth = auth
}

func (h *Hub) Run() {
	log.Printf("[WS HUB] Hub started and running")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS HUB] Client registered: user %d (total clients: %d)", client.userID, count)

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			if ok {
				log.Printf("[WS HUB] Client unregistered: user %d (total clients: %d)", client.userID, count)
			}
		}
	}
}

// Notify queues event on every connection owned by one of userIDs. It
// never blocks; a connection whose buffer is full is dropped.
func (h *Hub) Notify(userIDs []int, event models.Event) {
	if len(userIDs) == 0 {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WS] Notify marshal error for type '%s': %v", event.Type, err)
		return
	}

	wanted := make(map[int]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}

	sentCount := 0
	var staleClients []*Client
	h.mu.RLock()
	for client := range h.clients {
		if !wanted[client.userID] {
			continue
		}
		select {
		case client.send <- data:
			sentCount++
		default:
			log.Printf("[WS] Client of user %d buffer full, closing", client.userID)
			staleClients = append(staleClients, client)
		}
	}
	h.mu.RUnlock()

	if len(staleClients) > 0 {
		h.mu.Lock()
		for _, client := range staleClients {
			if _, ok := h.clients[client]; ok {
				close(client.send)
				delete(h.clients, client)
			}
		}
		h.mu.Unlock()
	}

	log.Printf("[WS] Notify type=%s sent to %d connections", event.Type, sentCount)
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		log.Printf("[WS] Connection rejected - no token provided from %s", r.RemoteAddr)
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.auth.Authenticate(token)
	if err != nil {
		log.Printf("[WS] Connection rejected - invalid token from %s: %v", r.RemoteAddr, err)
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error for user %d: %v", userID, err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: userID,
	}

	if err := conn.WriteMessage(websocket.TextMessage, welcomeMessage); err != nil {
		log.Printf("[WS] Failed to send welcome message to user %d: %v", userID, err)
		conn.Close()
		return
	}

	h.register <- client
	go client.writePump()
	go client.readPump()
}

// readPump only keeps the connection alive; clients have nothing to say
// over the socket.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Unexpected close error for user %d: %v", c.userID, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for user %d: %v", c.userID, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
