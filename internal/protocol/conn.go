package protocol

import (
	"sync"

	"github.com/vovakirdan/pong-server/internal/game"
)

// Conn is the transport-neutral view of one client connection.
// Sends are best-effort and fire-and-forget: implementations must never
// block game logic and must swallow write failures. Open gates every send.
type Conn interface {
	// SendJSON sends a control message if the connection is open.
	SendJSON(v any)

	// SendBinary sends a binary state frame if the connection is open.
	SendBinary(b []byte)

	// Open reports whether the connection can still accept writes.
	Open() bool

	// Close terminates the connection. Safe to call multiple times.
	Close()
}

// ConnContext is the per-connection record the dispatcher consults for
// every inbound message: which game and slot the connection is bound to,
// and the last accepted input sequence number. The transport creates one
// per connection and passes it alongside each message.
type ConnContext struct {
	mu      sync.Mutex
	gameID  string
	slot    game.PlayerID
	lastSeq uint32
	hasSeq  bool
}

// NewConnContext returns an unbound connection context.
func NewConnContext() *ConnContext {
	return &ConnContext{}
}

// Bind attaches the connection to a game slot and resets the input
// sequence filter. Called once at match assignment and once more on a
// successful reconnect rebinding.
func (c *ConnContext) Bind(gameID string, slot game.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = gameID
	c.slot = slot
	c.lastSeq = 0
	c.hasSeq = false
}

// Match returns the bound game id and slot, or ok=false if unbound.
func (c *ConnContext) Match() (gameID string, slot game.PlayerID, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID, c.slot, c.gameID != ""
}

// AcceptSeq applies the monotonic per-connection input filter: an input
// is accepted only if its sequence number exceeds the last accepted one.
// Stale and duplicate inputs return false and must be silently dropped.
func (c *ConnContext) AcceptSeq(seq uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasSeq && seq <= c.lastSeq {
		return false
	}
	c.lastSeq = seq
	c.hasSeq = true
	return true
}
