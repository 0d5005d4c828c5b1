// Package realtime pushes cart and order events to websocket subscribers.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/cart"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBufferSize is how many frames may wait for a slow subscriber
	// before it is dropped.
	sendBufferSize = 64
)

// Message is the frame written to subscribers.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// sessionEvent is implemented by events that belong to one shopper.
type sessionEvent interface {
	SessionID() string
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// enqueue never blocks; false means the client is gone or too far behind.
func (c *client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Hub fans events out to websocket clients. Session-scoped events reach the
// sockets of that session; everything else reaches the admin feed.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]map[*client]struct{}
	admins   map[*client]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]map[*client]struct{}),
		admins:   make(map[*client]struct{}),
	}
}

// Dispatch implements cart.Dispatcher. Frames are queued per client and
// written by its write pump; a client whose queue is full is dropped.
func (h *Hub) Dispatch(event cart.Event) error {
	data, err := json.Marshal(Message{Type: event.Type(), Data: event})
	if err != nil {
		return err
	}

	var targets []*client
	h.mu.RLock()
	if se, ok := event.(sessionEvent); ok {
		for c := range h.sessions[se.SessionID()] {
			targets = append(targets, c)
		}
	} else {
		for c := range h.admins {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(data) {
			h.logger.Debug("dropping slow websocket client", zap.String("event", event.Type()))
			h.drop(c)
		}
	}
	return nil
}

// ServeSession upgrades the request and subscribes it to session's events
// until the client goes away.
func (h *Hub) ServeSession(w http.ResponseWriter, r *http.Request, session string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := newClient(conn)

	h.mu.Lock()
	if h.sessions[session] == nil {
		h.sessions[session] = make(map[*client]struct{})
	}
	h.sessions[session][c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	h.readUntilClosed(c)
	return nil
}

// ServeAdmin subscribes the request to the admin feed (orders placed).
func (h *Hub) ServeAdmin(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := newClient(conn)

	h.mu.Lock()
	h.admins[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	h.readUntilClosed(c)
	return nil
}

// Subscribers returns how many sockets listen to session; "" counts the
// admin feed.
func (h *Hub) Subscribers(session string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if session == "" {
		return len(h.admins)
	}
	return len(h.sessions[session])
}

func (h *Hub) readUntilClosed(c *client) {
	defer h.drop(c)

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.drop(c)
	}()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
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

func (h *Hub) drop(c *client) {
	h.remove(c)
	c.close()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.admins, c)
	for session, clients := range h.sessions {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			if len(clients) == 0 {
				delete(h.sessions, session)
			}
		}
	}
}
