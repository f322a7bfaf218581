package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn adapts a gorilla websocket connection to protocol.Conn.
// Gorilla allows a single concurrent writer, so every write goes
// through writeMu. Sends are fire-and-forget: a failed write marks the
// connection closed and the read loop cleans up.
type wsConn struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closed    atomic.Bool
	writeWait time.Duration
}

func newWSConn(conn *websocket.Conn, writeWait time.Duration) *wsConn {
	return &wsConn{conn: conn, writeWait: writeWait}
}

// SendJSON writes a control message if the connection is open.
func (c *wsConn) SendJSON(v any) {
	if !c.Open() {
		return
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)) //nolint:errcheck // deadline on a dying conn fails with the write
	if err := c.conn.WriteJSON(v); err != nil {
		c.closed.Store(true)
	}
}

// SendBinary writes a state frame if the connection is open.
func (c *wsConn) SendBinary(b []byte) {
	if !c.Open() {
		return
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(c.writeWait)) //nolint:errcheck
	if err := c.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		c.closed.Store(true)
	}
}

// ping sends a liveness probe.
func (c *wsConn) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait))
}

// Open reports whether the connection can still accept writes.
func (c *wsConn) Open() bool {
	return !c.closed.Load()
}

// Close terminates the connection. Safe to call multiple times.
func (c *wsConn) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.conn.Close()
}
