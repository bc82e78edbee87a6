package domain

import "testing"

func TestConnStateString(t *testing.T) {
	tests := []struct {
		state ConnState
		want  string
	}{
		{StateDisconnected, "disconnected"},
		{StateConnecting, "connecting"},
		{StateConnected, "connected"},
		{StateDisconnecting, "disconnecting"},
		{ConnState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestConnStateCanSend(t *testing.T) {
	if !StateConnected.CanSend() {
		t.Error("connected should allow sending")
	}
	for _, s := range []ConnState{StateDisconnected, StateConnecting, StateDisconnecting} {
		if s.CanSend() {
			t.Errorf("%s should not allow sending", s)
		}
	}
}

func TestConnStateCanReset(t *testing.T) {
	if !StateConnected.CanReset() || !StateDisconnected.CanReset() {
		t.Error("settled states should allow reset")
	}
	if StateConnecting.CanReset() || StateDisconnecting.CanReset() {
		t.Error("transitional states should block reset")
	}
}
