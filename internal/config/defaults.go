package config

import (
	_ "embed"
)

//go:embed defaults/server.yaml
var defaultServerYAML []byte

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Table: TableConfig{
			Width:  600,
			Height: 800,
		},
		Paddle: PaddleConfig{
			Width:  100,
			Height: 20,
			Offset: 40,
		},
		Ball: BallConfig{
			Size:        16,
			ServeSpeedX: 3.0,
			ServeSpeedY: 5.0,
			RallyAccel:  1.05,
			SteerFactor: 0.25,
		},
		Gameplay: GameplayConfig{
			WinPoints:  11,
			ServeEvery: 2,
		},
		Net: NetConfig{
			TickRate:        60,
			GracePeriodSecs: 30,
			TeardownDelayMS: 1000,
			InputBufferSize: 128,
		},
	}
}
