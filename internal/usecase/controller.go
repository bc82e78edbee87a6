package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"parley/internal/domain"
	"parley/internal/infra/tracer"
)

// Event is a state change pushed from the controller to the UI loop.
// The controller is the single writer: remote callbacks are reduced
// here and the UI only ever sees the resulting events, in order.
type Event any

// StatusEvent reports a connection state change.
type StatusEvent struct {
	State domain.ConnState
}

// TurnEvent reports a turn appended to the transcript.
type TurnEvent struct {
	Turn domain.Turn
}

// SessionErrorEvent reports a remote-reported runtime error. The
// controller has already forced the disconnected recovery path when
// this is delivered.
type SessionErrorEvent struct {
	Err error
}

// Controller owns the remote session lifecycle. It serializes start
// and teardown against re-entrant calls: a start while one is in
// flight, or while the session is connecting or connected, is a no-op
// and requests no second remote session.
type Controller struct {
	session    domain.RemoteSession
	transcript *Transcript
	logger     *slog.Logger

	agentID string
	vars    map[string]string

	mu            sync.Mutex
	state         domain.ConnState
	startInFlight bool // a Start call has begun and not yet settled
	started       bool // the session reached connected at least once

	notifyMu sync.RWMutex
	notify   func(Event)
}

// NewController creates a controller for the given remote session.
func NewController(session domain.RemoteSession, transcript *Transcript, agentID string, logger *slog.Logger) *Controller {
	return &Controller{
		session:    session,
		transcript: transcript,
		logger:     logger,
		agentID:    agentID,
		vars:       map[string]string{"platform": "terminal"},
	}
}

// SetNotify registers the event sink. Events are delivered in the
// order the controller produces them; the sink must not block.
func (c *Controller) SetNotify(fn func(Event)) {
	c.notifyMu.Lock()
	c.notify = fn
	c.notifyMu.Unlock()
}

// State returns the current connection state.
func (c *Controller) State() domain.ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transcript returns the transcript store.
func (c *Controller) Transcript() *Transcript {
	return c.transcript
}

// Start establishes the remote session. It is a no-op when a start is
// already in flight or the state is connecting or connected. On
// failure the state is forced to disconnected, both guard flags are
// cleared, and no retry is attempted.
func (c *Controller) Start(ctx context.Context) error {
	ctx, span := tracer.StartSpan(ctx, "controller.start")
	defer span.End()

	c.mu.Lock()
	if c.startInFlight || c.state == domain.StateConnecting || c.state == domain.StateConnected {
		c.mu.Unlock()
		c.logger.Debug("start ignored", "state", c.state, "in_flight", c.startInFlight)
		return nil
	}
	c.startInFlight = true
	c.state = domain.StateConnecting
	c.mu.Unlock()
	c.emit(StatusEvent{State: domain.StateConnecting})

	cfg := domain.SessionConfig{
		AgentID:          c.agentID,
		DynamicVariables: c.vars,
		OnMessage:        c.onMessage,
		OnError:          c.onError,
		OnStatusChange:   c.onStatus,
	}

	if err := c.session.Start(ctx, cfg); err != nil {
		tracer.RecordError(span, err)
		c.logger.Error("session start failed", "error", err)
		c.settle(domain.StateDisconnected)
		return domain.WrapOp("Controller.Start", err)
	}

	tracer.SetOK(span)
	return nil
}

// Send forwards user text over the session and appends the user turn
// to the transcript. It is rejected without mutating the transcript
// when the text is empty or the state is not connected. A failed send
// is not retried and the turn is not appended.
func (c *Controller) Send(ctx context.Context, text string) (domain.Turn, error) {
	ctx, span := tracer.StartSpan(ctx, "controller.send")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Turn{}, domain.ErrEmptyMessage
	}

	c.mu.Lock()
	connected := c.state == domain.StateConnected
	c.mu.Unlock()
	if !connected {
		return domain.Turn{}, domain.ErrNotConnected
	}

	if err := c.session.SendUserMessage(ctx, text); err != nil {
		tracer.RecordError(span, err)
		c.logger.Error("send failed", "error", err)
		return domain.Turn{}, domain.WrapOp("Controller.Send", err)
	}

	turn := domain.NewTurn(domain.AuthorUser, text)
	c.transcript.Append(turn)
	c.emit(TurnEvent{Turn: turn})
	tracer.SetOK(span)
	return turn, nil
}

// Reset clears the transcript, tears the existing session down
// (teardown failure ignored), and starts a new session exactly once.
func (c *Controller) Reset(ctx context.Context) error {
	ctx, span := tracer.StartSpan(ctx, "controller.reset")
	defer span.End()

	c.transcript.Clear()

	c.mu.Lock()
	hadSession := c.started
	c.state = domain.StateDisconnecting
	c.mu.Unlock()
	c.emit(StatusEvent{State: domain.StateDisconnecting})

	if hadSession {
		if err := c.session.End(ctx); err != nil {
			// Teardown is best-effort cleanup.
			c.logger.Warn("session end failed during reset", "error", err)
		}
	}

	c.settle(domain.StateDisconnected)

	return c.Start(ctx)
}

// Close tears the session down on exit. The teardown call is only made
// when a session was actually established, so a close cannot race an
// in-progress connect into a dangling end call. Errors are swallowed.
func (c *Controller) Close(ctx context.Context) {
	c.mu.Lock()
	hadSession := c.started
	c.mu.Unlock()

	if hadSession {
		if err := c.session.End(ctx); err != nil {
			c.logger.Warn("session end failed on close", "error", err)
		}
	}
	c.settle(domain.StateDisconnected)
}

// onStatus mirrors remote status into ConnState, in delivery order.
func (c *Controller) onStatus(status domain.SessionStatus) {
	c.mu.Lock()
	switch status {
	case domain.StatusConnecting:
		c.state = domain.StateConnecting
	case domain.StatusConnected:
		c.state = domain.StateConnected
		c.started = true
		c.startInFlight = false
	case domain.StatusDisconnecting:
		c.state = domain.StateDisconnecting
	case domain.StatusDisconnected:
		c.state = domain.StateDisconnected
		c.started = false
		c.startInFlight = false
	}
	state := c.state
	c.mu.Unlock()

	c.logger.Debug("session status", "status", status)
	c.emit(StatusEvent{State: state})
}

// onMessage appends an inbound assistant turn to the transcript.
func (c *Controller) onMessage(ev domain.MessageEvent) {
	turn := domain.NewTurn(domain.AuthorAssistant, ev.Text)
	c.transcript.Append(turn)
	c.emit(TurnEvent{Turn: turn})
}

// onError handles a remote-reported runtime error: log and force the
// disconnected recovery path.
func (c *Controller) onError(err error) {
	c.logger.Error("session error", "error", err)
	c.settle(domain.StateDisconnected)
	c.emit(SessionErrorEvent{Err: err})
}

// settle moves to a terminal state and clears both guard flags.
func (c *Controller) settle(state domain.ConnState) {
	c.mu.Lock()
	c.state = state
	c.started = false
	c.startInFlight = false
	c.mu.Unlock()
	c.emit(StatusEvent{State: state})
}

func (c *Controller) emit(ev Event) {
	c.notifyMu.RLock()
	fn := c.notify
	c.notifyMu.RUnlock()
	if fn != nil {
		fn(ev)
	}
}
