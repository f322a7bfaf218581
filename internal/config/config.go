// Package config provides YAML-based server configuration loading:
// table geometry, physics tuning, gameplay rules, and net timings.
package config

import (
	"time"

	"github.com/vovakirdan/pong-server/internal/game"
	"github.com/vovakirdan/pong-server/internal/session"
)

// Config contains all tunable settings for the server.
type Config struct {
	Table    TableConfig    `yaml:"table"`
	Paddle   PaddleConfig   `yaml:"paddle"`
	Ball     BallConfig     `yaml:"ball"`
	Gameplay GameplayConfig `yaml:"gameplay"`
	Net      NetConfig      `yaml:"net"`
}

// TableConfig defines the playing field, in table units.
type TableConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PaddleConfig defines paddle geometry.
type PaddleConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Offset float64 `yaml:"offset"` // Collision band distance from the table edge
}

// BallConfig defines ball geometry and physics tuning.
type BallConfig struct {
	Size        float64 `yaml:"size"`
	ServeSpeedX float64 `yaml:"serve_speed_x"`
	ServeSpeedY float64 `yaml:"serve_speed_y"`
	RallyAccel  float64 `yaml:"rally_accel"`
	SteerFactor float64 `yaml:"steer_factor"`
}

// GameplayConfig defines the match rules.
type GameplayConfig struct {
	WinPoints  int `yaml:"win_points"`
	ServeEvery int `yaml:"serve_every"`
}

// NetConfig defines tick and timer settings.
type NetConfig struct {
	TickRate        int `yaml:"tick_rate"`
	GracePeriodSecs int `yaml:"grace_period_secs"`
	TeardownDelayMS int `yaml:"teardown_delay_ms"`
	InputBufferSize int `yaml:"input_buffer_size"`
}

// GameConfig converts the loaded settings into simulation tuning.
func (c Config) GameConfig() game.Config {
	return game.Config{
		TableWidth:   c.Table.Width,
		TableHeight:  c.Table.Height,
		PaddleWidth:  c.Paddle.Width,
		PaddleHeight: c.Paddle.Height,
		PaddleOffset: c.Paddle.Offset,
		BallSize:     c.Ball.Size,
		ServeSpeedX:  c.Ball.ServeSpeedX,
		ServeSpeedY:  c.Ball.ServeSpeedY,
		RallyAccel:   c.Ball.RallyAccel,
		SteerFactor:  c.Ball.SteerFactor,
		WinPoints:    c.Gameplay.WinPoints,
		ServeEvery:   c.Gameplay.ServeEvery,
	}
}

// SessionConfig converts the loaded settings into per-session tuning.
func (c Config) SessionConfig() session.Config {
	return session.Config{
		TickRate:      c.Net.TickRate,
		GracePeriod:   time.Duration(c.Net.GracePeriodSecs) * time.Second,
		TeardownDelay: time.Duration(c.Net.TeardownDelayMS) * time.Millisecond,
		InputBuffer:   c.Net.InputBufferSize,
		Game:          c.GameConfig(),
	}
}
