package protocol

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/vovakirdan/pong-server/internal/game"
)

// StateFrameSize is the fixed length of a binary state broadcast.
const StateFrameSize = 32

// StateFrame is the decoded form of a binary state broadcast.
// The wire layout is little-endian:
//
//	offset 0  tick           uint32
//	offset 4  p1_x           float32
//	offset 8  p2_x           float32
//	offset 12 ball.x         float32
//	offset 16 ball.y         float32
//	offset 20 ball.vx        float32
//	offset 24 ball.vy        float32
//	offset 28 score1         uint8
//	offset 29 score2         uint8
//	offset 30 servingPlayer  uint8 (1 or 2)
//	offset 31 awaitingServe  uint8 (0 or 1)
type StateFrame struct {
	Tick          uint32
	P1X           float32
	P2X           float32
	BallX         float32
	BallY         float32
	BallVX        float32
	BallVY        float32
	Score1        uint8
	Score2        uint8
	ServingPlayer uint8
	AwaitingServe bool
}

// EncodeState packs a simulation state into the 32-byte broadcast frame.
func EncodeState(tick uint32, s game.State) []byte {
	b := make([]byte, StateFrameSize)
	binary.LittleEndian.PutUint32(b[0:], tick)
	putFloat32(b[4:], s.Paddle1X)
	putFloat32(b[8:], s.Paddle2X)
	putFloat32(b[12:], s.BallX)
	putFloat32(b[16:], s.BallY)
	putFloat32(b[20:], s.BallVX)
	putFloat32(b[24:], s.BallVY)
	b[28] = uint8(s.Score1)
	b[29] = uint8(s.Score2)
	b[30] = uint8(s.Serving)
	if s.AwaitingServe {
		b[31] = 1
	}
	return b
}

// DecodeState unpacks a broadcast frame. Used by tests and Go clients.
func DecodeState(b []byte) (StateFrame, error) {
	if len(b) != StateFrameSize {
		return StateFrame{}, fmt.Errorf("protocol: state frame is %d bytes, want %d", len(b), StateFrameSize)
	}
	return StateFrame{
		Tick:          binary.LittleEndian.Uint32(b[0:]),
		P1X:           getFloat32(b[4:]),
		P2X:           getFloat32(b[8:]),
		BallX:         getFloat32(b[12:]),
		BallY:         getFloat32(b[16:]),
		BallVX:        getFloat32(b[20:]),
		BallVY:        getFloat32(b[24:]),
		Score1:        b[28],
		Score2:        b[29],
		ServingPlayer: b[30],
		AwaitingServe: b[31] != 0,
	}, nil
}

func putFloat32(b []byte, v float64) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
}

func getFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
