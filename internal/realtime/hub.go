// Package realtime pushes notifications to connected users over websockets.
package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"crmmvp/internal/logging"
	"crmmvp/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the API is token authenticated, not cookie authenticated
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan *models.Notification
}

// NotificationHub tracks websocket clients per user.
type NotificationHub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

func NewNotificationHub() *NotificationHub {
	return &NotificationHub{clients: make(map[string]map[*client]struct{})}
}

// Serve upgrades the request and streams userID's notifications until the
// peer goes away.
func (h *NotificationHub) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{userID: userID, conn: conn, send: make(chan *models.Notification, sendBuffer)}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
	return nil
}

// Push sends n to its recipient, or to everyone for a broadcast. Slow
// clients whose buffer is full miss the message.
func (h *NotificationHub) Push(n *models.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	deliver := func(set map[*client]struct{}) {
		for c := range set {
			select {
			case c.send <- n:
			default:
				logging.Logger.Warnf("[ws][push] dropping notification %s for user %s: buffer full", n.ID, c.userID)
			}
		}
	}
	if n.Broadcast() {
		for _, set := range h.clients {
			deliver(set)
		}
		return
	}
	deliver(h.clients[*n.RecipientID])
}

// Connected returns the number of open connections for userID.
func (h *NotificationHub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *NotificationHub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
}

func (h *NotificationHub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.userID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
}

// readPump only handles control frames; clients do not send data.
func (h *NotificationHub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
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

func (h *NotificationHub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case n, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(n); err != nil {
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
