package domain

import "context"

// SessionStatus is the status reported by the remote session layer.
// The controller mirrors these into ConnState in delivery order.
type SessionStatus string

const (
	StatusConnecting    SessionStatus = "connecting"
	StatusConnected     SessionStatus = "connected"
	StatusDisconnecting SessionStatus = "disconnecting"
	StatusDisconnected  SessionStatus = "disconnected"
)

// MessageEvent is an inbound message delivered by the remote session.
type MessageEvent struct {
	Text string
}

// SessionConfig carries the parameters and callbacks for a remote
// session. AgentID is required. Callbacks may be nil; the session
// layer must tolerate that.
type SessionConfig struct {
	AgentID          string
	DynamicVariables map[string]string

	OnMessage      func(MessageEvent)
	OnError        func(error)
	OnStatusChange func(SessionStatus)
}

// RemoteSession is the opaque remote collaborator. Its wire protocol,
// auth, and reconnection behavior are implementation details; callers
// only sequence Start/End/SendUserMessage and react to callbacks.
type RemoteSession interface {
	// Start establishes the session and begins delivering callbacks.
	// It returns once the session is established or failed.
	Start(ctx context.Context, cfg SessionConfig) error

	// End tears the session down. Best-effort; callers may ignore the error.
	End(ctx context.Context) error

	// SendUserMessage forwards user text over the established session.
	SendUserMessage(ctx context.Context, text string) error
}
