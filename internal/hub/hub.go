// Package hub holds the process-wide table of live sessions, the FIFO
// matchmaking queue, and the dispatcher that routes inbound messages to
// registry and session operations.
package hub

import (
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/pong-server/internal/game"
	"github.com/vovakirdan/pong-server/internal/protocol"
	"github.com/vovakirdan/pong-server/internal/session"
)

// ErrNotFound is returned when no joinable session has the given id.
var ErrNotFound = errors.New("hub: game not found")

// ResultSaver persists finished match results. Implementations are
// optional; saving is best-effort and never blocks game logic.
type ResultSaver interface {
	SaveMatchResult(res session.Result) error
}

// queueEntry is one player waiting for an opponent.
type queueEntry struct {
	name string
	conn protocol.Conn
	ctx  *protocol.ConnContext
}

// Hub manages matchmaking and the session registry.
type Hub struct {
	cfg     session.Config
	logger  *log.Logger
	results ResultSaver // Optional, can be nil

	mu       sync.Mutex
	sessions map[string]*session.Session
	queue    []queueEntry
}

// New creates a hub with the given per-session configuration.
func New(cfg session.Config, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*session.Session),
	}
}

// SetResultSaver installs an optional match result store.
func (h *Hub) SetResultSaver(rs ResultSaver) {
	h.results = rs
}

// SessionCount returns the number of registered sessions.
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// QueueLen returns the number of players waiting for a match.
func (h *Hub) QueueLen() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queue)
}

// Session returns a registered session by id.
func (h *Hub) Session(id string) (*session.Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[strings.ToUpper(id)]
	return s, ok
}

// Remove stops a session's scheduler and discards it. Idempotent; safe
// to call on an already-removed id.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
	}
	h.mu.Unlock()

	if ok {
		s.Stop()
	}
}

// Stop tears down every live session. Used on server shutdown.
func (h *Hub) Stop() {
	h.mu.Lock()
	sessions := make([]*session.Session, 0, len(h.sessions))
	for id, s := range h.sessions {
		sessions = append(sessions, s)
		delete(h.sessions, id)
	}
	h.queue = nil
	h.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}
}

// create allocates a fresh session in waiting status with the caller as
// player 1 and registers it.
func (h *Hub) create(name string, conn protocol.Conn, ctx *protocol.ConnContext) *session.Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.newSessionID()
	s := session.New(id, h.cfg, name, conn, ctx, h.onSessionEnd)
	h.sessions[id] = s
	ctx.Bind(id, game.Player1)

	h.logger.Info("game created", "game", id, "player", name)
	return s
}

// findMatch pairs the caller with the queue head, or enqueues the
// caller if nobody is waiting. Entries whose connection has gone away
// are pruned first.
func (h *Hub) findMatch(name string, conn protocol.Conn, ctx *protocol.ConnContext) {
	h.mu.Lock()

	h.pruneQueueLocked()

	if len(h.queue) == 0 {
		h.queue = append(h.queue, queueEntry{name: name, conn: conn, ctx: ctx})
		h.mu.Unlock()
		conn.SendJSON(protocol.NewWaitingForMatch())
		return
	}

	opponent := h.queue[0]
	h.queue = h.queue[1:]

	id := h.newSessionID()
	s := session.New(id, h.cfg, name, conn, ctx, h.onSessionEnd)
	h.sessions[id] = s
	h.mu.Unlock()

	s.AddPlayer(opponent.name, opponent.conn, opponent.ctx)
	s.Start()

	h.logger.Info("match started", "game", id, "p1", name, "p2", opponent.name)
}

// pruneQueueLocked drops queue entries whose connection is closed.
// Caller holds mu.
func (h *Hub) pruneQueueLocked() {
	kept := h.queue[:0]
	for _, e := range h.queue {
		if e.conn.Open() {
			kept = append(kept, e)
		}
	}
	h.queue = kept
}

// join fills slot 2 of a waiting session and starts its scheduler.
// The id is matched case-insensitively.
func (h *Hub) join(id, name string, conn protocol.Conn, ctx *protocol.ConnContext) error {
	s, ok := h.Session(id)
	if !ok {
		return ErrNotFound
	}
	if !s.AddPlayer(name, conn, ctx) {
		return ErrNotFound
	}
	s.Start()

	h.logger.Info("player joined", "game", s.ID(), "player", name)
	return nil
}

// onSessionEnd removes the finished session and persists its result.
func (h *Hub) onSessionEnd(res session.Result) {
	h.Remove(res.SessionID)

	h.logger.Info("session ended",
		"game", res.SessionID,
		"reason", res.Reason.String(),
		"winner", res.WinnerName,
		"score", fmt.Sprintf("%d-%d", res.Score1, res.Score2),
	)

	if h.results != nil {
		// Best effort, never blocks teardown.
		go func() {
			if err := h.results.SaveMatchResult(res); err != nil {
				h.logger.Warn("could not save match result", "game", res.SessionID, "error", err)
			}
		}()
	}
}

// newSessionID generates a 5-character uppercase alphanumeric id,
// regenerating on the unlikely collision with a live session.
// Caller holds mu.
func (h *Hub) newSessionID() string {
	for {
		id := generateID()
		if _, exists := h.sessions[id]; !exists {
			return id
		}
	}
}

// generateID creates a 5-character uppercase alphanumeric game id.
func generateID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based
		return fmt.Sprintf("%05X", time.Now().UnixNano()&0xFFFFF)
	}
	// base32 alphabet is A-Z and 2-7, already uppercase alphanumeric
	return base32.StdEncoding.EncodeToString(b)[:5]
}
