// Package protocol defines the wire format between clients and the server:
// the inbound JSON message envelope, the outbound JSON control messages,
// and the fixed-size binary state broadcast.
package protocol

import "encoding/json"

// Inbound message types.
const (
	MsgFindMatch = "findMatch"
	MsgCreate    = "create"
	MsgJoin      = "join"
	MsgReconnect = "reconnect"
	MsgInput     = "input"
	MsgServeBall = "serveBall"
)

// Outbound control message types.
const (
	MsgWaitingForMatch      = "waitingForMatch"
	MsgGameCreated          = "gameCreated"
	MsgGameStarted          = "gameStarted"
	MsgError                = "error"
	MsgOpponentReconnecting = "opponentReconnecting"
	MsgOpponentLeft         = "opponentLeft"
	MsgGameResumed          = "gameResumed"
	MsgReconnectSuccess     = "reconnectSuccess"
	MsgGameOver             = "gameOver"
)

// Envelope wraps every inbound message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// FindMatchPayload asks the matchmaking queue for an opponent.
type FindMatchPayload struct {
	PlayerName string `json:"playerName"`
}

// CreatePayload creates a private game to share by id.
type CreatePayload struct {
	PlayerName string `json:"playerName"`
}

// JoinPayload joins a private game by id. The id match is case-insensitive.
type JoinPayload struct {
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

// ReconnectPayload rebinds a new connection to a live game.
type ReconnectPayload struct {
	GameID         string `json:"gameId"`
	ReconnectToken string `json:"reconnectToken"`
}

// InputPayload carries one paddle input sample. Seq must exceed the last
// accepted sequence number on the same connection or the input is dropped.
type InputPayload struct {
	Seq  uint32    `json:"seq"`
	Data InputData `json:"data"`
}

// InputData is the input sample itself.
type InputData struct {
	PaddleX float64 `json:"paddle_x"`
}

// WaitingForMatch tells a queued player no opponent is available yet.
type WaitingForMatch struct {
	Type string `json:"type"`
}

// NewWaitingForMatch builds a waitingForMatch message.
func NewWaitingForMatch() WaitingForMatch {
	return WaitingForMatch{Type: MsgWaitingForMatch}
}

// GameCreated confirms a private game and carries its shareable id.
type GameCreated struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
}

// NewGameCreated builds a gameCreated message.
func NewGameCreated(gameID string) GameCreated {
	return GameCreated{Type: MsgGameCreated, GameID: gameID}
}

// GameStarted announces match start. The reconnect token is
// per-recipient and never shared with the opponent.
type GameStarted struct {
	Type           string `json:"type"`
	GameID         string `json:"gameId"`
	P1Name         string `json:"p1_name"`
	P2Name         string `json:"p2_name"`
	ReconnectToken string `json:"reconnectToken"`
}

// NewGameStarted builds a gameStarted message for one recipient.
func NewGameStarted(gameID, p1Name, p2Name, token string) GameStarted {
	return GameStarted{
		Type:           MsgGameStarted,
		GameID:         gameID,
		P1Name:         p1Name,
		P2Name:         p2Name,
		ReconnectToken: token,
	}
}

// ErrorMsg reports a failed operation to the client.
type ErrorMsg struct {
	Type             string `json:"type"`
	Message          string `json:"message"`
	IsReconnectError bool   `json:"isReconnectError,omitempty"`
}

// NewError builds an error message.
func NewError(message string) ErrorMsg {
	return ErrorMsg{Type: MsgError, Message: message}
}

// NewReconnectError builds an error message flagged as a reconnect failure.
func NewReconnectError(message string) ErrorMsg {
	return ErrorMsg{Type: MsgError, Message: message, IsReconnectError: true}
}

// OpponentReconnecting tells a player the match is paused while the
// opponent's grace period runs.
type OpponentReconnecting struct {
	Type string `json:"type"`
}

// NewOpponentReconnecting builds an opponentReconnecting message.
func NewOpponentReconnecting() OpponentReconnecting {
	return OpponentReconnecting{Type: MsgOpponentReconnecting}
}

// OpponentLeft tells a player the opponent will not return.
type OpponentLeft struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewOpponentLeft builds an opponentLeft message.
func NewOpponentLeft(message string) OpponentLeft {
	return OpponentLeft{Type: MsgOpponentLeft, Message: message}
}

// GameResumed tells both players the match is live again.
type GameResumed struct {
	Type string `json:"type"`
}

// NewGameResumed builds a gameResumed message.
func NewGameResumed() GameResumed {
	return GameResumed{Type: MsgGameResumed}
}

// ReconnectSuccess confirms a reconnect to the returning player.
type ReconnectSuccess struct {
	Type      string `json:"type"`
	P1Name    string `json:"p1_name"`
	P2Name    string `json:"p2_name"`
	PlayerNum int    `json:"playerNum"`
}

// NewReconnectSuccess builds a reconnectSuccess message.
func NewReconnectSuccess(p1Name, p2Name string, playerNum int) ReconnectSuccess {
	return ReconnectSuccess{
		Type:      MsgReconnectSuccess,
		P1Name:    p1Name,
		P2Name:    p2Name,
		PlayerNum: playerNum,
	}
}

// GameOver announces the winner to both players.
type GameOver struct {
	Type       string `json:"type"`
	WinnerName string `json:"winnerName"`
}

// NewGameOver builds a gameOver message.
func NewGameOver(winnerName string) GameOver {
	return GameOver{Type: MsgGameOver, WinnerName: winnerName}
}
