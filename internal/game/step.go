package game

import "math/rand"

// Result reports what happened during one simulation step.
type Result struct {
	PointTo PlayerID // Slot that scored this tick, or NoPlayer
	Winner  PlayerID // Slot that won the match this tick, or NoPlayer
}

// ReleaseServe puts the ball in play from the serving paddle.
// The horizontal direction is chosen uniformly at random; the vertical
// component always heads toward the opponent. Does nothing unless the
// state is awaiting a serve.
func ReleaseServe(cfg Config, s *State, rng *rand.Rand) {
	if !s.AwaitingServe {
		return
	}
	s.AwaitingServe = false

	s.BallVX = cfg.ServeSpeedX
	if rng.Intn(2) == 0 {
		s.BallVX = -s.BallVX
	}
	if s.Serving == Player1 {
		s.BallVY = -cfg.ServeSpeedY // Bottom server fires upward
	} else {
		s.BallVY = cfg.ServeSpeedY
	}
}

// Step advances the simulation by exactly one tick.
// While awaiting a serve the ball stays pinned to the serving paddle and
// no integration happens. Otherwise the ball moves, reflects off the side
// walls, deflects off paddles, and a point is scored when it exits the
// table past a paddle band.
func Step(cfg Config, s *State) Result {
	if s.AwaitingServe {
		s.pinBall(cfg)
		return Result{}
	}

	s.BallX += s.BallVX
	s.BallY += s.BallVY

	// Side walls reflect the horizontal component.
	if s.BallX <= 0 {
		s.BallX = 0
		s.BallVX = -s.BallVX
	} else if s.BallX >= cfg.TableWidth-cfg.BallSize {
		s.BallX = cfg.TableWidth - cfg.BallSize
		s.BallVX = -s.BallVX
	}

	s.collidePaddles(cfg)

	if s.BallY > cfg.TableHeight {
		// Past the bottom edge: Player 1 missed.
		return s.scorePoint(cfg, Player2)
	}
	if s.BallY+cfg.BallSize < 0 {
		// Past the top edge: Player 2 missed.
		return s.scorePoint(cfg, Player1)
	}
	return Result{}
}

// collidePaddles deflects the ball off either paddle band.
// A hit negates and accelerates the vertical velocity, steers the
// horizontal velocity by the offset between ball and paddle centers, and
// nudges the ball just outside the band so the same hit cannot repeat.
func (s *State) collidePaddles(cfg Config) {
	ballCenter := s.BallX + cfg.BallSize/2

	// Player 1 band (bottom).
	bandTop := cfg.TableHeight - cfg.PaddleOffset - cfg.PaddleHeight
	ballBottom := s.BallY + cfg.BallSize
	if s.BallVY > 0 && ballBottom >= bandTop && ballBottom <= bandTop+cfg.PaddleHeight &&
		overlaps(s.BallX, cfg.BallSize, s.Paddle1X, cfg.PaddleWidth) {
		s.BallVY = -s.BallVY * cfg.RallyAccel
		s.BallVX = (ballCenter - (s.Paddle1X + cfg.PaddleWidth/2)) * cfg.SteerFactor
		s.BallY = bandTop - cfg.BallSize
		return
	}

	// Player 2 band (top).
	bandBottom := cfg.PaddleOffset + cfg.PaddleHeight
	if s.BallVY < 0 && s.BallY <= bandBottom && s.BallY >= cfg.PaddleOffset &&
		overlaps(s.BallX, cfg.BallSize, s.Paddle2X, cfg.PaddleWidth) {
		s.BallVY = -s.BallVY * cfg.RallyAccel
		s.BallVX = (ballCenter - (s.Paddle2X + cfg.PaddleWidth/2)) * cfg.SteerFactor
		s.BallY = bandBottom
	}
}

// overlaps reports whether two horizontal extents intersect.
func overlaps(x1, w1, x2, w2 float64) bool {
	return x1 < x2+w2 && x2 < x1+w1
}

// scorePoint awards a point, checks the win condition, and otherwise
// resets the ball for the next serve.
//
// Serve rotation follows table-tennis rules: the serve changes hands
// every ServeEvery total points, except at deuce (both scores at or
// above WinPoints-1) where it alternates every point.
func (s *State) scorePoint(cfg Config, to PlayerID) Result {
	if to == Player1 {
		s.Score1++
	} else {
		s.Score2++
	}

	if winner := s.winner(cfg); winner != NoPlayer {
		return Result{PointTo: to, Winner: winner}
	}

	total := s.Score1 + s.Score2
	deuce := s.Score1 >= cfg.WinPoints-1 && s.Score2 >= cfg.WinPoints-1
	if deuce || total%cfg.ServeEvery == 0 {
		s.Serving = s.Serving.Other()
	}
	s.resetServe(cfg)
	return Result{PointTo: to}
}

// winner returns the winning slot, if any: first to WinPoints with at
// least a two-point lead.
func (s *State) winner(cfg Config) PlayerID {
	if s.Score1 >= cfg.WinPoints && s.Score1-s.Score2 >= 2 {
		return Player1
	}
	if s.Score2 >= cfg.WinPoints && s.Score2-s.Score1 >= 2 {
		return Player2
	}
	return NoPlayer
}
