package hub

import (
	"errors"

	"github.com/vovakirdan/pong-server/internal/protocol"
	"github.com/vovakirdan/pong-server/internal/session"
)

// Dispatch routes one inbound application message to the matching
// queue, registry, or session operation. Malformed messages are logged
// and ignored; the connection is never dropped for them. ctx is the
// connection's ambient record, owned by the transport and shared with
// every Dispatch call for the same connection.
func (h *Hub) Dispatch(conn protocol.Conn, ctx *protocol.ConnContext, raw []byte) {
	env, err := protocol.DecodeEnvelope(raw)
	if err != nil {
		h.logger.Warn("malformed message", "error", err)
		return
	}

	switch env.Type {
	case protocol.MsgFindMatch:
		p, err := protocol.DecodePayload[protocol.FindMatchPayload](env)
		if err != nil {
			h.logger.Warn("malformed message", "error", err)
			return
		}
		h.findMatch(p.PlayerName, conn, ctx)

	case protocol.MsgCreate:
		p, err := protocol.DecodePayload[protocol.CreatePayload](env)
		if err != nil {
			h.logger.Warn("malformed message", "error", err)
			return
		}
		s := h.create(p.PlayerName, conn, ctx)
		conn.SendJSON(protocol.NewGameCreated(s.ID()))

	case protocol.MsgJoin:
		p, err := protocol.DecodePayload[protocol.JoinPayload](env)
		if err != nil {
			h.logger.Warn("malformed message", "error", err)
			return
		}
		if err := h.join(p.GameID, p.PlayerName, conn, ctx); err != nil {
			conn.SendJSON(protocol.NewError("Game not found"))
		}

	case protocol.MsgReconnect:
		p, err := protocol.DecodePayload[protocol.ReconnectPayload](env)
		if err != nil {
			h.logger.Warn("malformed message", "error", err)
			return
		}
		h.reconnect(p.GameID, p.ReconnectToken, conn, ctx)

	case protocol.MsgInput:
		p, err := protocol.DecodePayload[protocol.InputPayload](env)
		if err != nil {
			h.logger.Warn("malformed message", "error", err)
			return
		}
		h.input(p, conn, ctx)

	case protocol.MsgServeBall:
		h.serveBall(ctx)

	default:
		h.logger.Warn("unknown message type", "type", env.Type)
	}
}

// reconnect rebinds a returning player's new connection to its slot.
func (h *Hub) reconnect(gameID, token string, conn protocol.Conn, ctx *protocol.ConnContext) {
	s, ok := h.Session(gameID)
	if !ok {
		conn.SendJSON(protocol.NewReconnectError("Invalid session"))
		return
	}
	if err := s.Reconnect(token, conn, ctx); err != nil {
		if errors.Is(err, session.ErrInvalidToken) {
			conn.SendJSON(protocol.NewReconnectError("Invalid token"))
		} else {
			conn.SendJSON(protocol.NewReconnectError("Invalid session"))
		}
		return
	}
	h.logger.Info("player reconnected", "game", s.ID())
}

// input appends a paddle sample to the session's pending queue,
// applying the per-connection monotonic sequence filter first.
func (h *Hub) input(p protocol.InputPayload, _ protocol.Conn, ctx *protocol.ConnContext) {
	gameID, slot, bound := ctx.Match()
	if !bound {
		return
	}
	s, ok := h.Session(gameID)
	if !ok {
		return
	}
	if !ctx.AcceptSeq(p.Seq) {
		return
	}
	s.QueueInput(slot, p.Data.PaddleX)
}

// serveBall releases a pending serve if the sender is the serving player.
func (h *Hub) serveBall(ctx *protocol.ConnContext) {
	gameID, slot, bound := ctx.Match()
	if !bound {
		return
	}
	s, ok := h.Session(gameID)
	if !ok {
		return
	}
	s.ReleaseServe(slot)
}

// Disconnect reacts to the transport reporting a closed connection:
// the player is removed from the matchmaking queue, and any session the
// connection is bound to runs its disconnect state machine.
func (h *Hub) Disconnect(conn protocol.Conn, ctx *protocol.ConnContext) {
	h.mu.Lock()
	kept := h.queue[:0]
	for _, e := range h.queue {
		if e.conn != conn {
			kept = append(kept, e)
		}
	}
	h.queue = kept
	h.mu.Unlock()

	gameID, _, bound := ctx.Match()
	if !bound {
		return
	}
	if s, ok := h.Session(gameID); ok {
		s.HandleDisconnect(conn)
	}
}
