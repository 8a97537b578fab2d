package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one live websocket connection. All writes to the socket go
// through the send channel; the write pump is the only goroutine that
// touches the connection for output.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	role   string
	send   chan []byte

	mu    sync.Mutex
	rooms map[string]struct{}
}

func (c *Client) inRoom(bookingID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.rooms[bookingID]
	return ok
}

func (c *Client) trackRoom(bookingID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[bookingID] = struct{}{}
}

func (c *Client) untrackRoom(bookingID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, bookingID)
}

func (c *Client) joinedRooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		out = append(out, id)
	}
	return out
}

// deliver queues a frame without blocking the router; a client that
// cannot keep up loses frames rather than stalling the room.
func (c *Client) deliver(data []byte) {
	select {
	case c.send <- data:
	default:
		slog.Debug("realtime send buffer full, dropping frame", "user", c.userID)
	}
}

func (c *Client) readPump() {
	defer c.hub.disconnect(c)
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var f inboundFrame
		if err := json.Unmarshal(raw, &f); err != nil {
			c.deliver(encode(outboundFrame{Type: EvError, Reason: "malformed frame"}))
			continue
		}
		c.hub.handle(c, f)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
