package protocol

import (
	"encoding/json"
	"fmt"
)

// DecodeEnvelope parses an inbound message envelope.
func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("protocol: empty message")
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, fmt.Errorf("protocol: malformed envelope: %w", err)
	}
	if e.Type == "" {
		return Envelope{}, fmt.Errorf("protocol: envelope missing type")
	}
	return e, nil
}

// DecodePayload parses an envelope's payload into a concrete message type.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Payload) == 0 {
		return out, fmt.Errorf("protocol: empty payload for type %q", env.Type)
	}
	if err := json.Unmarshal(env.Payload, &out); err != nil {
		return out, fmt.Errorf("protocol: malformed %q payload: %w", env.Type, err)
	}
	return out, nil
}
