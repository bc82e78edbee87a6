package domain

// ConnState is the client-side view of the remote session lifecycle.
// Transitions are driven only by remote status callbacks and by the
// reset action; everything the UI enables or disables is derived from
// this one value.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateDisconnecting
)

// String returns the label shown in the connection indicator.
func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// CanSend reports whether user input may be forwarded to the session.
func (s ConnState) CanSend() bool { return s == StateConnected }

// CanReset reports whether the reset action is available. Reset is
// blocked while a transition is in progress.
func (s ConnState) CanReset() bool {
	return s == StateConnected || s == StateDisconnected
}
