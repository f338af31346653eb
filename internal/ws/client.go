package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second

	// sendBuffer bounds per-socket backpressure; a client that falls this
	// far behind is dropped by the hub.
	sendBuffer = 256
)

// Conn is the subset of *websocket.Conn the client pumps need. Tests
// substitute an in-memory fake.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one live socket. A user with several devices has several
// clients, all subscribed to the same personal channel.
type Client struct {
	ID     string // socket id
	UserID string
	Send   chan []byte

	conn Conn

	mu     sync.Mutex // guards closed and sends on Send
	closed bool
}

// NewClient wraps an upgraded connection.
func NewClient(id, userID string, conn Conn) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
		conn:   conn,
	}
}

// CloseSend closes the send queue exactly once. The write pump drains the
// remaining events and closes the underlying connection. It synchronizes
// with Enqueue so a detached client's read loop can never send on the
// closed channel.
func (c *Client) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// Enqueue queues an event for this socket. Every send on the queue goes
// through here, hub fan-out included. It reports false when the client is
// too far behind or already detached; it never panics on a closed queue.
func (c *Client) Enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// WritePump drains the send queue onto the wire and keeps the connection
// alive with pings. It owns all writes; nothing else may write to the conn.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

// ReadMessage reads the next frame from the socket. Events on one socket are
// handled in arrival order because the read loop is the only reader.
func (c *Client) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}
