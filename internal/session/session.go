// Package session owns the state of one live match: two player slots,
// the status state machine, the pending-input queue, the simulation
// state, reconnect tokens, and the per-session tick scheduler.
package session

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/pong-server/internal/game"
	"github.com/vovakirdan/pong-server/internal/protocol"
)

// Status is the session lifecycle state.
type Status int

const (
	// StatusWaiting means slot 2 is empty and the match has not started.
	StatusWaiting Status = iota

	// StatusPlaying means both slots are occupied and the simulation runs.
	StatusPlaying

	// StatusReconnecting means a player is disconnected and the simulation
	// is frozen while the grace period runs.
	StatusReconnecting

	// StatusEnded is terminal; the session is about to be removed.
	StatusEnded
)

// String returns the wire-facing name of the status.
func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusPlaying:
		return "playing"
	case StatusReconnecting:
		return "reconnecting"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// EndReason describes why a session ended.
type EndReason int

const (
	ReasonCompleted EndReason = iota // A player won
	ReasonAbandoned                  // Grace period expired or creator left while waiting
)

func (r EndReason) String() string {
	switch r {
	case ReasonCompleted:
		return "completed"
	case ReasonAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Result is the outcome reported to the registry when a session ends.
type Result struct {
	SessionID  string
	Reason     EndReason
	Winner     game.PlayerID // NoPlayer on abandonment
	WinnerName string
	P1Name     string
	P2Name     string
	Score1     int
	Score2     int
	Ticks      uint32
}

// Config holds the per-session timing and simulation tuning.
type Config struct {
	TickRate      int           // Simulation ticks per second
	GracePeriod   time.Duration // Reconnect window after a disconnect
	TeardownDelay time.Duration // Delay between gameOver and removal
	InputBuffer   int           // Pending-input queue capacity
	Seed          int64         // RNG seed; 0 seeds from the clock
	Game          game.Config
}

// DefaultConfig returns the standard session tuning.
func DefaultConfig() Config {
	return Config{
		TickRate:      60,
		GracePeriod:   30 * time.Second,
		TeardownDelay: time.Second,
		InputBuffer:   128,
		Game:          game.DefaultConfig(),
	}
}

// Player is one occupied slot in a session.
type Player struct {
	Name         string
	Conn         protocol.Conn
	Ctx          *protocol.ConnContext
	Token        string // Reconnect token, immutable for the session's lifetime
	Disconnected bool

	graceTimer *time.Timer
	graceGen   int // Invalidates a timer that is about to fire
}

// queuedInput is one pending paddle input awaiting the next tick.
type queuedInput struct {
	slot    game.PlayerID
	paddleX float64
}

// Session is one match between two players.
// All state behind mu; the tick scheduler and message dispatch take the
// lock per operation, so ticks and messages interleave but never overlap.
type Session struct {
	id    string
	cfg   Config
	onEnd func(Result) // Called exactly once when the session is over

	mu      sync.Mutex
	status  Status
	players [2]*Player // Index 0 is slot 1
	tick    uint32
	state   game.State
	rng     *rand.Rand
	inputs  chan queuedInput

	done     chan struct{}
	stopOnce sync.Once
	endOnce  sync.Once
}

// New creates a session in waiting status with the caller as player 1.
// onEnd is invoked exactly once, from a timer or scheduler goroutine,
// when the session is over and should be removed from the registry.
func New(id string, cfg Config, name string, conn protocol.Conn, ctx *protocol.ConnContext, onEnd func(Result)) *Session {
	if cfg.InputBuffer < 1 {
		cfg.InputBuffer = 128
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Session{
		id:     id,
		cfg:    cfg,
		onEnd:  onEnd,
		status: StatusWaiting,
		state:  game.NewState(cfg.Game),
		rng:    rand.New(rand.NewSource(seed)),
		inputs: make(chan queuedInput, cfg.InputBuffer),
		done:   make(chan struct{}),
	}
	s.players[0] = &Player{
		Name:  name,
		Conn:  conn,
		Ctx:   ctx,
		Token: uuid.NewString(),
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Tick returns the current tick counter.
func (s *Session) Tick() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// State returns a copy of the current simulation state.
func (s *Session) State() game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Joinable reports whether a second player may join.
func (s *Session) Joinable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == StatusWaiting
}

// AddPlayer fills slot 2, flips the session to playing, binds both
// connection contexts, and notifies both sides of match start with
// their per-recipient reconnect tokens. The caller must then Start the
// scheduler. Returns false if the session is not waiting.
func (s *Session) AddPlayer(name string, conn protocol.Conn, ctx *protocol.ConnContext) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusWaiting {
		return false
	}
	s.players[1] = &Player{
		Name:  name,
		Conn:  conn,
		Ctx:   ctx,
		Token: uuid.NewString(),
	}
	s.status = StatusPlaying

	p1, p2 := s.players[0], s.players[1]
	p1.Ctx.Bind(s.id, game.Player1)
	p2.Ctx.Bind(s.id, game.Player2)
	p1.Conn.SendJSON(protocol.NewGameStarted(s.id, p1.Name, p2.Name, p1.Token))
	p2.Conn.SendJSON(protocol.NewGameStarted(s.id, p1.Name, p2.Name, p2.Token))
	return true
}

// QueueInput appends a paddle input to the pending queue. The queue is
// drained in FIFO order by the next tick; if it is full the input is
// dropped (the next sample supersedes it anyway).
func (s *Session) QueueInput(slot game.PlayerID, paddleX float64) {
	select {
	case s.inputs <- queuedInput{slot: slot, paddleX: paddleX}:
	default:
	}
}

// ReleaseServe puts the ball in play. Valid only while the session is
// playing, a serve is pending, and the sender is the serving player.
func (s *Session) ReleaseServe(slot game.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlaying || !s.state.AwaitingServe || s.state.Serving != slot {
		return
	}
	game.ReleaseServe(s.cfg.Game, &s.state, s.rng)
}

// player returns the slot's player record. Caller holds mu.
func (s *Session) player(slot game.PlayerID) *Player {
	if slot == game.Player1 {
		return s.players[0]
	}
	return s.players[1]
}

// finish reports the session's end exactly once.
func (s *Session) finish(res Result) {
	s.endOnce.Do(func() {
		if s.onEnd != nil {
			s.onEnd(res)
		}
	})
}

// result builds an end-of-session report. Caller holds mu.
func (s *Session) result(reason EndReason, winner game.PlayerID) Result {
	res := Result{
		SessionID: s.id,
		Reason:    reason,
		Winner:    winner,
		P1Name:    s.players[0].Name,
		Score1:    s.state.Score1,
		Score2:    s.state.Score2,
		Ticks:     s.tick,
	}
	if s.players[1] != nil {
		res.P2Name = s.players[1].Name
	}
	if winner != game.NoPlayer {
		res.WinnerName = s.player(winner).Name
	}
	return res
}
