package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/hanoi/game/engine"
	"github.com/wricardo/mcp-training/hanoi/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Outbound event names that are not service events
const (
	EventFrame = "frame"
	EventError = "error"
)

// Inbound message types
const (
	PointerDown = "pointer_down"
	PointerMove = "pointer_move"
	PointerUp   = "pointer_up"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the JSON document pushed to clients
type Message struct {
	SessionID string        `json:"session_id"`
	Event     string        `json:"event"`
	Frame     *engine.Frame `json:"frame,omitempty"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`

	// target restricts delivery to one client
	target *Client
}

// Inbound is a pointer event sent by a client, in canvas coordinates
type Inbound struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// InboundHandler applies a client's pointer event to its session
type InboundHandler func(ctx context.Context, sessionID string, msg Inbound) error

// Client represents a WebSocket client
type Client struct {
	id        string
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and fans out frames and events.
// Only the Run goroutine writes the sessions map.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]bool

	// Outbound messages, dropped when full so callers never block
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	done    chan struct{}
	handler InboundHandler
	logger  *slog.Logger
	dropped atomic.Int64
}

// Option configures a Hub
type Option func(*Hub)

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) { h.logger = logger }
}

// NewHub creates a new WebSocket hub
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, engine.WebSocketBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnInbound installs the handler for client pointer events. Call it before serving.
func (h *Hub) OnInbound(handler InboundHandler) {
	h.handler = handler
}

// Run starts the hub's event loop and closes every client when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-ctx.Done():
			h.mu.RLock()
			var clients []*Client
			for _, set := range h.sessions {
				for client := range set {
					clients = append(clients, client)
				}
			}
			h.mu.RUnlock()
			for _, client := range clients {
				h.unregisterClient(client)
			}
			return
		}
	}
}

// ServeWS upgrades the request and attaches the connection to sessionID.
// initial, when non-nil, is sent to the new client only.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, initial *engine.Frame) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		id:        uuid.NewString(),
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, engine.WebSocketBufferSize),
		sessionID: sessionID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	if initial != nil {
		h.enqueue(&Message{SessionID: sessionID, Event: EventFrame, Frame: initial, target: client})
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastFrame queues a frame for every client of the session
func (h *Hub) BroadcastFrame(sessionID string, frame *engine.Frame) {
	h.enqueue(&Message{SessionID: sessionID, Event: EventFrame, Frame: frame, Timestamp: time.Now()})
}

// BroadcastEvent queues a service event for every client of the session
func (h *Hub) BroadcastEvent(sessionID string, event service.Event) {
	h.enqueue(&Message{SessionID: sessionID, Event: event.Type, Message: event.Message, Timestamp: event.Timestamp})
}

// ClientCount returns the number of clients attached to a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Dropped returns how many messages were discarded because the queue was full
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.dropped.Add(1)
		h.logger.Warn("websocket queue full, message dropped", "session", message.SessionID, "event", message.Event)
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true
	total := len(h.sessions[client.sessionID])
	h.mu.Unlock()

	h.logger.Info("websocket client registered", "session", client.sessionID, "client", client.id, "clients", total)
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.sessions[client.sessionID]
	if !ok || !clients[client] {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	close(client.send)

	// Clean up empty sessions
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}
	remaining := len(clients)
	h.mu.Unlock()

	h.logger.Info("websocket client unregistered", "session", client.sessionID, "client", client.id, "clients", remaining)
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", "error", err)
		return
	}

	h.mu.RLock()
	var slow []*Client
	for client := range h.sessions[message.SessionID] {
		if message.target != nil && client != message.target {
			continue
		}
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// Client's send channel is full, drop it
	for _, client := range slow {
		h.unregisterClient(client)
	}
}

func (h *Hub) handleInbound(client *Client, data []byte) {
	if h.handler == nil {
		return
	}

	var msg Inbound
	err := json.Unmarshal(data, &msg)
	if err == nil {
		err = h.handler(context.Background(), client.sessionID, msg)
	}
	if err != nil {
		h.logger.Debug("inbound message rejected", "session", client.sessionID, "client", client.id, "error", err)
		h.enqueue(&Message{SessionID: client.sessionID, Event: EventError, Message: err.Error(), Timestamp: time.Now(), target: client})
	}
}

// readPump pumps pointer events from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", "session", c.sessionID, "client", c.id, "error", err)
			}
			break
		}
		c.hub.handleInbound(c, data)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
