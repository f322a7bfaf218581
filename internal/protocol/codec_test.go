package protocol

import "testing"

func TestDecodeEnvelope(t *testing.T) {
	raw := []byte(`{"type":"join","payload":{"gameId":"AB2CD","playerName":"alice"}}`)

	env, err := DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("DecodeEnvelope() failed: %v", err)
	}
	if env.Type != MsgJoin {
		t.Errorf("type = %q, want %q", env.Type, MsgJoin)
	}

	p, err := DecodePayload[JoinPayload](env)
	if err != nil {
		t.Fatalf("DecodePayload() failed: %v", err)
	}
	if p.GameID != "AB2CD" || p.PlayerName != "alice" {
		t.Errorf("payload = %+v, want gameId AB2CD and playerName alice", p)
	}
}

func TestDecodeEnvelopeMalformed(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte(``),
		[]byte(`not json`),
		[]byte(`{"payload":{}}`), // Missing type
	}
	for _, raw := range cases {
		if _, err := DecodeEnvelope(raw); err == nil {
			t.Errorf("DecodeEnvelope(%q) should fail", raw)
		}
	}
}

func TestDecodeInputPayload(t *testing.T) {
	raw := []byte(`{"type":"input","payload":{"seq":42,"data":{"paddle_x":217.5}}}`)

	env, err := DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("DecodeEnvelope() failed: %v", err)
	}
	p, err := DecodePayload[InputPayload](env)
	if err != nil {
		t.Fatalf("DecodePayload() failed: %v", err)
	}
	if p.Seq != 42 || p.Data.PaddleX != 217.5 {
		t.Errorf("payload = %+v, want seq 42 and paddle_x 217.5", p)
	}
}

func TestAcceptSeqMonotonicFilter(t *testing.T) {
	ctx := NewConnContext()

	// Spec sequence: 5 and the first 7 pass, 3 and the second 7 drop.
	results := []struct {
		seq  uint32
		want bool
	}{
		{5, true},
		{3, false},
		{7, true},
		{7, false},
	}
	for _, r := range results {
		if got := ctx.AcceptSeq(r.seq); got != r.want {
			t.Errorf("AcceptSeq(%d) = %v, want %v", r.seq, got, r.want)
		}
	}
}

func TestAcceptSeqResetOnBind(t *testing.T) {
	ctx := NewConnContext()
	if !ctx.AcceptSeq(100) {
		t.Fatal("first input should be accepted")
	}

	// A rebind (new match or reconnect) resets the filter.
	ctx.Bind("AB2CD", 1)
	if !ctx.AcceptSeq(1) {
		t.Error("sequence filter should reset when the context is rebound")
	}

	gameID, slot, ok := ctx.Match()
	if !ok || gameID != "AB2CD" || slot != 1 {
		t.Errorf("Match() = (%q, %v, %v), want (AB2CD, 1, true)", gameID, slot, ok)
	}
}

func TestAcceptSeqZeroFirst(t *testing.T) {
	ctx := NewConnContext()
	if !ctx.AcceptSeq(0) {
		t.Error("a client starting at sequence 0 should not be filtered")
	}
	if ctx.AcceptSeq(0) {
		t.Error("duplicate sequence 0 should be dropped")
	}
}
