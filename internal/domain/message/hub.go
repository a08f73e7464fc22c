package message

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 512 * 1024 // 512 KB
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // Allow all origins (configure in prod)
}

// WSEvent is a real-time event pushed to clients. Delivery is best-effort:
// clients must re-fetch authoritative state (messages, unread counts) and
// merge inserts idempotently by message id.
type WSEvent struct {
	Type           string      `json:"type"`
	ConversationID string      `json:"conversation_id"`
	Payload        interface{} `json:"payload,omitempty"`
}

const (
	EventNewMessage   = "new_message"
	EventMessagesRead = "messages_read"
)

// connection represents a single WebSocket client
type connection struct {
	userID        int64
	conn          *websocket.Conn
	send          chan []byte
	conversations map[string]bool // subscribed conversation IDs
}

// Hub manages all active WebSocket connections. Every subscription is
// authorized against conversation membership before it takes effect.
type Hub struct {
	mu            sync.RWMutex
	connections   map[int64]*connection // userID -> connection
	conversations ConversationGuard
}

func NewHub(conversations ConversationGuard) *Hub {
	return &Hub{
		connections:   make(map[int64]*connection),
		conversations: conversations,
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c.userID] = c
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.connections[c.userID]; ok && existing == c {
		delete(h.connections, c.userID)
		close(c.send)
	}
}

// Broadcast sends an event to all connected subscribers of a conversation.
func (h *Hub) Broadcast(conversationID string, event *WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.connections {
		if c.conversations[conversationID] {
			select {
			case c.send <- data:
			default:
				// Client too slow — skip
			}
		}
	}
}

// ServeWS registers a new connection and starts read/write loops
func (h *Hub) ServeWS(conn *websocket.Conn, userID int64, initial []string) {
	c := &connection{
		userID:        userID,
		conn:          conn,
		send:          make(chan []byte, 256),
		conversations: make(map[string]bool),
	}

	for _, id := range initial {
		c.conversations[id] = true
	}

	h.register(c)

	go h.writePump(c)
	h.readPump(c) // blocks until disconnect
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var event struct {
			Type           string `json:"type"`
			ConversationID string `json:"conversation_id"`
		}
		if err := json.Unmarshal(msg, &event); err != nil {
			continue
		}

		switch event.Type {
		case "subscribe":
			h.subscribe(c, event.ConversationID)
		case "unsubscribe":
			h.mu.Lock()
			delete(c.conversations, event.ConversationID)
			h.mu.Unlock()
		}
	}
}

// subscribe attaches the connection to a conversation's event stream.
// Non-participants are silently ignored; the caller learns nothing about
// conversations it cannot read.
func (h *Hub) subscribe(c *connection, conversationID string) {
	if _, err := h.conversations.Get(context.Background(), c.userID, conversationID); err != nil {
		return
	}
	h.mu.Lock()
	c.conversations[conversationID] = true
	h.mu.Unlock()
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
