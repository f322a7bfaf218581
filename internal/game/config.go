package game

// Default tuning values. The config package can override these from YAML;
// the zero Config is never used directly.
const (
	DefaultTableWidth   = 600.0
	DefaultTableHeight  = 800.0
	DefaultPaddleWidth  = 100.0
	DefaultPaddleHeight = 20.0
	DefaultPaddleOffset = 40.0 // Distance of the collision band from the table edge
	DefaultBallSize     = 16.0
	DefaultServeSpeedX  = 3.0
	DefaultServeSpeedY  = 5.0
	DefaultRallyAccel   = 1.05
	DefaultSteerFactor  = 0.25
	DefaultWinPoints    = 11
	DefaultServeEvery   = 2
)

// Config holds the physics and gameplay tuning for one match.
// All values are in table units (the client scales to its viewport).
type Config struct {
	TableWidth   float64
	TableHeight  float64
	PaddleWidth  float64
	PaddleHeight float64
	PaddleOffset float64
	BallSize     float64

	ServeSpeedX float64 // Horizontal serve speed magnitude (sign is randomized)
	ServeSpeedY float64 // Vertical serve speed, always toward the opponent
	RallyAccel  float64 // Vertical speed multiplier applied on each paddle hit (>1)
	SteerFactor float64 // Horizontal steering per unit of ball-to-paddle-center offset

	WinPoints  int // Points needed to win (with a 2-point lead)
	ServeEvery int // Serve changes hands every N total points before deuce
}

// DefaultConfig returns the standard match tuning.
func DefaultConfig() Config {
	return Config{
		TableWidth:   DefaultTableWidth,
		TableHeight:  DefaultTableHeight,
		PaddleWidth:  DefaultPaddleWidth,
		PaddleHeight: DefaultPaddleHeight,
		PaddleOffset: DefaultPaddleOffset,
		BallSize:     DefaultBallSize,
		ServeSpeedX:  DefaultServeSpeedX,
		ServeSpeedY:  DefaultServeSpeedY,
		RallyAccel:   DefaultRallyAccel,
		SteerFactor:  DefaultSteerFactor,
		WinPoints:    DefaultWinPoints,
		ServeEvery:   DefaultServeEvery,
	}
}

// ClampPaddle restricts a paddle's left edge to the playable range.
func (c Config) ClampPaddle(x float64) float64 {
	return clampF(x, 0, c.TableWidth-c.PaddleWidth)
}

// clampF restricts a float64 value to be within [min, max].
func clampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
