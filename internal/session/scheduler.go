package session

import (
	"time"

	"github.com/vovakirdan/pong-server/internal/game"
	"github.com/vovakirdan/pong-server/internal/protocol"
)

// Start launches the tick scheduler. Call once, after the session
// enters playing status.
func (s *Session) Start() {
	go s.run()
}

// Stop halts the scheduler. Idempotent; no tick fires after it returns.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// run drives the session at a fixed rate until stopped.
func (s *Session) run() {
	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runTick()
		case <-s.done:
			return
		}
	}
}

// runTick executes one simulation tick: drain pending inputs, advance
// the physics, check the win condition, broadcast the new state.
// Ticks are skipped entirely while a player is reconnecting, freezing
// the match for the duration of the grace period.
func (s *Session) runTick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlaying {
		return
	}

	s.tick++
	s.drainInputs()

	res := game.Step(s.cfg.Game, &s.state)
	if res.Winner != game.NoPlayer {
		s.endWithWinner(res.Winner)
		return
	}

	s.broadcastState()
}

// drainInputs applies every pending input in arrival order. Later
// inputs from the same player overwrite earlier ones drained in the
// same tick. Caller holds mu.
func (s *Session) drainInputs() {
	for {
		select {
		case in := <-s.inputs:
			s.state.SetPaddleX(s.cfg.Game, in.slot, in.paddleX)
		default:
			return
		}
	}
}

// broadcastState pushes the binary state frame to every connected,
// non-disconnected player. Caller holds mu.
func (s *Session) broadcastState() {
	frame := protocol.EncodeState(s.tick, s.state)
	for _, p := range s.players {
		if p != nil && !p.Disconnected {
			p.Conn.SendBinary(frame)
		}
	}
}

// endWithWinner notifies both players of the winner, stops the
// scheduler, and schedules removal after a short delay so the
// notification can reach the clients first. Caller holds mu.
func (s *Session) endWithWinner(winner game.PlayerID) {
	s.status = StatusEnded
	s.cancelGraceTimers()

	over := protocol.NewGameOver(s.player(winner).Name)
	for _, p := range s.players {
		if p != nil && !p.Disconnected {
			p.Conn.SendJSON(over)
		}
	}

	res := s.result(ReasonCompleted, winner)
	s.Stop()
	time.AfterFunc(s.cfg.TeardownDelay, func() {
		s.finish(res)
	})
}

// cancelGraceTimers stops any pending disconnect timers. Caller holds mu.
func (s *Session) cancelGraceTimers() {
	for _, p := range s.players {
		if p != nil && p.graceTimer != nil {
			p.graceTimer.Stop()
			p.graceTimer = nil
			p.graceGen++
		}
	}
}
