package session

import (
	"errors"
	"time"

	"github.com/vovakirdan/pong-server/internal/game"
	"github.com/vovakirdan/pong-server/internal/protocol"
)

// ErrInvalidToken is returned when a reconnect token matches neither
// player's stored token.
var ErrInvalidToken = errors.New("session: invalid reconnect token")

// HandleDisconnect reacts to the transport closing a connection.
// If conn is not the active binding of either slot (a replaced zombie),
// nothing happens. A creator leaving a waiting session abandons it.
// Otherwise the player is marked disconnected, the session freezes in
// reconnecting status, the opponent is notified, and the grace timer
// starts. A repeat disconnect on the same slot restarts its timer.
func (s *Session) HandleDisconnect(conn protocol.Conn) {
	s.mu.Lock()

	if s.status == StatusEnded {
		s.mu.Unlock()
		return
	}

	var slot game.PlayerID
	switch {
	case s.players[0].Conn == conn:
		slot = game.Player1
	case s.players[1] != nil && s.players[1].Conn == conn:
		slot = game.Player2
	default:
		s.mu.Unlock()
		return
	}

	if s.status == StatusWaiting {
		// No opponent yet; nothing to preserve.
		s.status = StatusEnded
		res := s.result(ReasonAbandoned, game.NoPlayer)
		s.Stop()
		s.mu.Unlock()
		s.finish(res)
		return
	}

	p := s.player(slot)
	p.Disconnected = true
	s.status = StatusReconnecting

	if opp := s.player(slot.Other()); !opp.Disconnected {
		opp.Conn.SendJSON(protocol.NewOpponentReconnecting())
	}

	s.startGraceTimer(p, slot)
	s.mu.Unlock()
}

// startGraceTimer arms the disconnect timer for a slot, cancelling any
// previous one so at most one timer per player is live. Caller holds mu.
func (s *Session) startGraceTimer(p *Player, slot game.PlayerID) {
	if p.graceTimer != nil {
		p.graceTimer.Stop()
	}
	p.graceGen++
	gen := p.graceGen
	p.graceTimer = time.AfterFunc(s.cfg.GracePeriod, func() {
		s.graceExpired(slot, gen)
	})
}

// graceExpired tears the session down when a player fails to return in
// time. The generation check guards against a timer that was cancelled
// while already firing.
func (s *Session) graceExpired(slot game.PlayerID, gen int) {
	s.mu.Lock()

	p := s.player(slot)
	if s.status == StatusEnded || p.graceGen != gen || !p.Disconnected {
		s.mu.Unlock()
		return
	}

	s.status = StatusEnded
	if opp := s.player(slot.Other()); !opp.Disconnected && opp.Conn.Open() {
		opp.Conn.SendJSON(protocol.NewOpponentLeft(p.Name + " did not reconnect"))
	}

	res := s.result(ReasonAbandoned, game.NoPlayer)
	s.Stop()
	s.mu.Unlock()

	s.finish(res)
}

// Reconnect rebinds a new connection to the slot whose token matches.
// Any still-open previous connection for the slot is forcibly closed so
// a zombie duplicate cannot keep acting as the player. If neither
// player remains disconnected afterwards, the match resumes.
func (s *Session) Reconnect(token string, conn protocol.Conn, ctx *protocol.ConnContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusEnded {
		return ErrInvalidToken
	}

	var slot game.PlayerID
	switch {
	case s.players[0].Token == token:
		slot = game.Player1
	case s.players[1] != nil && s.players[1].Token == token:
		slot = game.Player2
	default:
		return ErrInvalidToken
	}

	p := s.player(slot)
	if p.Conn != nil && p.Conn != conn && p.Conn.Open() {
		p.Conn.Close()
	}
	if p.graceTimer != nil {
		p.graceTimer.Stop()
		p.graceTimer = nil
		p.graceGen++
	}

	p.Conn = conn
	p.Ctx = ctx
	p.Disconnected = false
	ctx.Bind(s.id, slot)

	p1, p2 := s.players[0], s.players[1]
	conn.SendJSON(protocol.NewReconnectSuccess(p1.Name, p2.Name, int(slot)))

	if s.status == StatusReconnecting && !p1.Disconnected && !p2.Disconnected {
		s.status = StatusPlaying
		resumed := protocol.NewGameResumed()
		p1.Conn.SendJSON(resumed)
		p2.Conn.SendJSON(resumed)
	}
	return nil
}
