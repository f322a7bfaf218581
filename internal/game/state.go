// Package game implements the authoritative pong simulation.
// It contains pure logic with no I/O and no shared state: the session layer
// owns a State value and advances it one fixed tick at a time.
package game

// PlayerID identifies a player slot within a match.
type PlayerID int

// Player slots. Player1 defends the bottom edge of the table,
// Player2 defends the top edge.
const (
	NoPlayer PlayerID = 0
	Player1  PlayerID = 1
	Player2  PlayerID = 2
)

// Other returns the opposing slot.
func (p PlayerID) Other() PlayerID {
	if p == Player1 {
		return Player2
	}
	return Player1
}

// State is the complete simulation state for one match.
// Paddle and ball positions are top-left coordinates in table units.
type State struct {
	Paddle1X float64 // Player 1 paddle (bottom)
	Paddle2X float64 // Player 2 paddle (top)

	BallX  float64
	BallY  float64
	BallVX float64
	BallVY float64

	Score1 int
	Score2 int

	Serving       PlayerID // Slot that serves the next ball
	AwaitingServe bool     // Ball is pinned to the server's paddle until released
}

// NewState returns the initial match state: paddles centered,
// Player 1 holding the first serve.
func NewState(cfg Config) State {
	s := State{
		Paddle1X: (cfg.TableWidth - cfg.PaddleWidth) / 2,
		Paddle2X: (cfg.TableWidth - cfg.PaddleWidth) / 2,
		Serving:  Player1,
	}
	s.resetServe(cfg)
	return s
}

// PaddleX returns the paddle position for a slot.
func (s *State) PaddleX(p PlayerID) float64 {
	if p == Player1 {
		return s.Paddle1X
	}
	return s.Paddle2X
}

// SetPaddleX moves a slot's paddle, clamped to the playable range.
func (s *State) SetPaddleX(cfg Config, p PlayerID, x float64) {
	x = cfg.ClampPaddle(x)
	if p == Player1 {
		s.Paddle1X = x
	} else {
		s.Paddle2X = x
	}
}

// Score returns the score for a slot.
func (s *State) Score(p PlayerID) int {
	if p == Player1 {
		return s.Score1
	}
	return s.Score2
}

// resetServe pins the ball to the serving player's paddle and
// flags the state as awaiting an explicit serve action.
func (s *State) resetServe(cfg Config) {
	s.AwaitingServe = true
	s.BallVX = 0
	s.BallVY = 0
	s.pinBall(cfg)
}

// pinBall centers the ball on the serving paddle, just outside its band.
func (s *State) pinBall(cfg Config) {
	s.BallX = s.PaddleX(s.Serving) + (cfg.PaddleWidth-cfg.BallSize)/2
	if s.Serving == Player1 {
		s.BallY = cfg.TableHeight - cfg.PaddleOffset - cfg.PaddleHeight - cfg.BallSize
	} else {
		s.BallY = cfg.PaddleOffset + cfg.PaddleHeight
	}
}
