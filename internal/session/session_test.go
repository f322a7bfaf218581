package session

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/pong-server/internal/game"
	"github.com/vovakirdan/pong-server/internal/protocol"
)

// fakeConn records everything sent to it.
type fakeConn struct {
	mu     sync.Mutex
	open   bool
	msgs   []any
	frames [][]byte
	closes int
}

func newFakeConn() *fakeConn {
	return &fakeConn{open: true}
}

func (c *fakeConn) SendJSON(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		c.msgs = append(c.msgs, v)
	}
}

func (c *fakeConn) SendBinary(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		frame := make([]byte, len(b))
		copy(frame, b)
		c.frames = append(c.frames, frame)
	}
}

func (c *fakeConn) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.closes++
}

func (c *fakeConn) msgTypes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	types := make([]string, 0, len(c.msgs))
	for _, m := range c.msgs {
		types = append(types, msgType(m))
	}
	return types
}

func (c *fakeConn) lastMsg() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.msgs) == 0 {
		return nil
	}
	return c.msgs[len(c.msgs)-1]
}

func (c *fakeConn) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *fakeConn) jsonMsgs() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.msgs...)
}

// msgType extracts the wire type of an outbound control message.
func msgType(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	var t struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &t); err != nil {
		return ""
	}
	return t.Type
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

type endCollector struct {
	mu      sync.Mutex
	results []Result
}

func (e *endCollector) onEnd(res Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.results = append(e.results, res)
}

func (e *endCollector) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.results)
}

func (e *endCollector) last() (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.results) == 0 {
		return Result{}, false
	}
	return e.results[len(e.results)-1], true
}

func testSessionConfig() Config {
	cfg := DefaultConfig()
	cfg.GracePeriod = 60 * time.Millisecond
	cfg.TeardownDelay = 10 * time.Millisecond
	cfg.Seed = 1
	return cfg
}

// newTestMatch builds a playing session without starting the scheduler,
// so tests can drive ticks deterministically via runTick.
func newTestMatch(t *testing.T) (*Session, *fakeConn, *fakeConn, *endCollector) {
	t.Helper()

	ends := &endCollector{}
	c1, c2 := newFakeConn(), newFakeConn()
	s := New("AB2CD", testSessionConfig(), "alice", c1, protocol.NewConnContext(), ends.onEnd)
	if !s.AddPlayer("bob", c2, protocol.NewConnContext()) {
		t.Fatal("AddPlayer() failed on a waiting session")
	}
	return s, c1, c2, ends
}

func TestAddPlayerStartsMatch(t *testing.T) {
	s, c1, c2, _ := newTestMatch(t)

	if s.Status() != StatusPlaying {
		t.Fatalf("status = %v, want playing", s.Status())
	}

	m1, ok1 := c1.lastMsg().(protocol.GameStarted)
	m2, ok2 := c2.lastMsg().(protocol.GameStarted)
	if !ok1 || !ok2 {
		t.Fatal("both players should receive gameStarted")
	}
	if m1.GameID != "AB2CD" || m1.P1Name != "alice" || m1.P2Name != "bob" {
		t.Errorf("gameStarted = %+v, want id AB2CD, alice vs bob", m1)
	}
	if m1.ReconnectToken == "" || m1.ReconnectToken == m2.ReconnectToken {
		t.Error("each player should receive their own reconnect token")
	}
}

func TestAddPlayerRejectedWhenNotWaiting(t *testing.T) {
	s, _, _, _ := newTestMatch(t)
	if s.AddPlayer("eve", newFakeConn(), protocol.NewConnContext()) {
		t.Error("AddPlayer() should fail once the session is playing")
	}
}

func TestTickAppliesInputsInOrder(t *testing.T) {
	s, c1, c2, _ := newTestMatch(t)

	s.QueueInput(game.Player1, 100)
	s.QueueInput(game.Player1, 300) // Overwrites 100 within the same tick
	s.QueueInput(game.Player2, -50) // Clamps to 0
	s.runTick()

	st := s.State()
	if st.Paddle1X != 300 {
		t.Errorf("paddle1 = %v, want 300 (last writer wins)", st.Paddle1X)
	}
	if st.Paddle2X != 0 {
		t.Errorf("paddle2 = %v, want 0 (clamped)", st.Paddle2X)
	}
	if s.Tick() != 1 {
		t.Errorf("tick = %d, want 1", s.Tick())
	}
	if c1.frameCount() != 1 || c2.frameCount() != 1 {
		t.Errorf("frames = (%d, %d), want one broadcast each", c1.frameCount(), c2.frameCount())
	}
}

func TestReconnectingFreezesSimulation(t *testing.T) {
	s, c1, c2, _ := newTestMatch(t)
	s.runTick()

	c2.Close()
	s.HandleDisconnect(c2)

	if s.Status() != StatusReconnecting {
		t.Fatalf("status = %v, want reconnecting", s.Status())
	}
	if !hasType(c1.msgTypes(), protocol.MsgOpponentReconnecting) {
		t.Error("opponent should be notified of the reconnect attempt")
	}

	tickBefore := s.Tick()
	stateBefore := s.State()
	framesBefore := c1.frameCount()

	for i := 0; i < 5; i++ {
		s.runTick()
	}

	if s.Tick() != tickBefore {
		t.Errorf("tick advanced to %d during reconnecting, want frozen at %d", s.Tick(), tickBefore)
	}
	if s.State() != stateBefore {
		t.Error("simulation state changed during reconnecting")
	}
	if c1.frameCount() != framesBefore {
		t.Error("broadcasts should be suppressed during reconnecting")
	}
}

func TestReconnectRoundTrip(t *testing.T) {
	s, c1, c2, _ := newTestMatch(t)

	c2.Close()
	s.HandleDisconnect(c2)

	c3 := newFakeConn()
	if err := s.Reconnect(s.players[1].Token, c3, protocol.NewConnContext()); err != nil {
		t.Fatalf("Reconnect() failed: %v", err)
	}

	if s.Status() != StatusPlaying {
		t.Errorf("status = %v, want playing after reconnect", s.Status())
	}

	var success protocol.ReconnectSuccess
	found := false
	for _, m := range c3.jsonMsgs() {
		if rs, ok := m.(protocol.ReconnectSuccess); ok {
			success = rs
			found = true
		}
	}
	if !found {
		t.Fatal("reconnecting player should receive reconnectSuccess")
	}
	if success.P1Name != "alice" || success.P2Name != "bob" || success.PlayerNum != 2 {
		t.Errorf("reconnectSuccess = %+v, want alice/bob slot 2", success)
	}

	if !hasType(c1.msgTypes(), protocol.MsgGameResumed) || !hasType(c3.msgTypes(), protocol.MsgGameResumed) {
		t.Error("both players should receive gameResumed")
	}

	// Ticks flow again and reach the new connection.
	s.runTick()
	if c3.frameCount() == 0 {
		t.Error("rebound connection should receive state broadcasts")
	}
}

func TestReconnectClosesZombieConnection(t *testing.T) {
	s, _, c2, _ := newTestMatch(t)

	// The transport never reported c2 closed; a reconnect with the
	// slot's token must terminate it so it cannot keep acting.
	c3 := newFakeConn()
	if err := s.Reconnect(s.players[1].Token, c3, protocol.NewConnContext()); err != nil {
		t.Fatalf("Reconnect() failed: %v", err)
	}
	if c2.Open() {
		t.Error("previous connection should be forcibly closed")
	}
}

func TestReconnectWrongToken(t *testing.T) {
	s, _, c2, _ := newTestMatch(t)

	c2.Close()
	s.HandleDisconnect(c2)

	stateBefore := s.State()
	err := s.Reconnect("not-a-token", newFakeConn(), protocol.NewConnContext())
	if err != ErrInvalidToken {
		t.Fatalf("Reconnect() error = %v, want ErrInvalidToken", err)
	}
	if s.Status() != StatusReconnecting {
		t.Errorf("status = %v, want unchanged reconnecting", s.Status())
	}
	if s.State() != stateBefore {
		t.Error("failed reconnect must not mutate state")
	}
}

func TestGraceExpiryTearsDown(t *testing.T) {
	s, c1, c2, ends := newTestMatch(t)

	c2.Close()
	s.HandleDisconnect(c2)

	deadline := time.Now().Add(time.Second)
	for ends.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	res, ok := ends.last()
	if !ok {
		t.Fatal("grace expiry should end the session")
	}
	if res.Reason != ReasonAbandoned || res.Winner != game.NoPlayer {
		t.Errorf("result = %+v, want abandoned with no winner", res)
	}
	if !hasType(c1.msgTypes(), protocol.MsgOpponentLeft) {
		t.Error("opponent should receive opponentLeft")
	}
	if s.Status() != StatusEnded {
		t.Errorf("status = %v, want ended", s.Status())
	}
}

func TestRepeatDisconnectRestartsGraceTimer(t *testing.T) {
	s, _, c2, ends := newTestMatch(t)

	c2.Close()
	s.HandleDisconnect(c2)
	time.Sleep(35 * time.Millisecond)
	s.HandleDisconnect(c2) // Restarts the 60ms timer

	time.Sleep(40 * time.Millisecond) // 75ms after the first disconnect
	if ends.count() != 0 {
		t.Fatal("restarted timer should not have fired yet")
	}

	deadline := time.Now().Add(time.Second)
	for ends.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if ends.count() != 1 {
		t.Errorf("session ended %d times, want exactly once", ends.count())
	}
}

func TestReconnectCancelsGraceTimer(t *testing.T) {
	s, _, c2, ends := newTestMatch(t)

	c2.Close()
	s.HandleDisconnect(c2)
	if err := s.Reconnect(s.players[1].Token, newFakeConn(), protocol.NewConnContext()); err != nil {
		t.Fatalf("Reconnect() failed: %v", err)
	}

	time.Sleep(120 * time.Millisecond)
	if ends.count() != 0 {
		t.Error("grace timer should be cancelled by a successful reconnect")
	}
	if s.Status() != StatusPlaying {
		t.Errorf("status = %v, want playing", s.Status())
	}
}

func TestWinEndsSession(t *testing.T) {
	s, c1, c2, ends := newTestMatch(t)

	// Put the match one rally away from an alice win and make the ball
	// exit past bob's paddle.
	s.mu.Lock()
	s.state.Score1 = 10
	s.state.Score2 = 5
	s.state.AwaitingServe = false
	s.state.BallY = -s.cfg.Game.BallSize - 1
	s.state.BallVY = -1
	s.mu.Unlock()

	s.runTick()

	if s.Status() != StatusEnded {
		t.Fatalf("status = %v, want ended", s.Status())
	}

	for _, c := range []*fakeConn{c1, c2} {
		over, ok := c.lastMsg().(protocol.GameOver)
		if !ok {
			t.Fatal("both players should receive gameOver")
		}
		if over.WinnerName != "alice" {
			t.Errorf("winnerName = %q, want alice", over.WinnerName)
		}
	}

	// Teardown happens after a short delay so the notification lands.
	if ends.count() != 0 {
		t.Error("teardown should be delayed past the gameOver notification")
	}
	deadline := time.Now().Add(time.Second)
	for ends.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	res, _ := ends.last()
	if res.Reason != ReasonCompleted || res.Winner != game.Player1 || res.WinnerName != "alice" {
		t.Errorf("result = %+v, want completed win by alice", res)
	}
	if res.Score1 != 11 || res.Score2 != 5 {
		t.Errorf("final score = %d-%d, want 11-5", res.Score1, res.Score2)
	}

	// No further ticks after the session ends.
	tick := s.Tick()
	s.runTick()
	if s.Tick() != tick {
		t.Error("ended session should not tick")
	}
}

func TestWaitingCreatorDisconnectAbandons(t *testing.T) {
	ends := &endCollector{}
	c1 := newFakeConn()
	s := New("AB2CD", testSessionConfig(), "alice", c1, protocol.NewConnContext(), ends.onEnd)

	c1.Close()
	s.HandleDisconnect(c1)

	if s.Status() != StatusEnded {
		t.Fatalf("status = %v, want ended", s.Status())
	}
	res, ok := ends.last()
	if !ok || res.Reason != ReasonAbandoned {
		t.Errorf("result = %+v, want abandoned", res)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	s, c1, _, _ := newTestMatch(t)

	s.Start()
	deadline := time.Now().Add(time.Second)
	for s.Tick() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.Tick() == 0 {
		t.Fatal("scheduler should advance ticks")
	}
	if c1.frameCount() == 0 {
		t.Fatal("scheduler should broadcast state")
	}

	s.Stop()
	s.Stop() // Idempotent
	tick := s.Tick()
	time.Sleep(50 * time.Millisecond)
	if s.Tick() != tick {
		t.Error("no tick may fire after Stop")
	}
}

func TestServeOnlyByServingPlayer(t *testing.T) {
	s, _, _, _ := newTestMatch(t)

	st := s.State()
	if !st.AwaitingServe || st.Serving != game.Player1 {
		t.Fatalf("initial state = %+v, want player 1 awaiting serve", st)
	}

	s.ReleaseServe(game.Player2) // Not the server
	if !s.State().AwaitingServe {
		t.Fatal("non-serving player must not release the serve")
	}

	s.ReleaseServe(game.Player1)
	if s.State().AwaitingServe {
		t.Fatal("serving player should release the serve")
	}
}
