// Package realtime implements the remote conversational session over
// WebSocket. Callers treat it as an opaque domain.RemoteSession; the
// framing and handshake here are service plumbing, not public API.
package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"parley/internal/domain"
)

const (
	writeTimeout  = 5 * time.Second
	sendQueueSize = 64
)

// Options configure the realtime client.
type Options struct {
	URL         string // websocket endpoint
	APIKey      string // optional bearer token
	DialTimeout time.Duration
	SendRate    float64 // outbound user messages per second; 0 = default 4/s
	Logger      *slog.Logger
}

// sessionConn holds the state of one established session.
type sessionConn struct {
	ws        *websocket.Conn
	cfg       domain.SessionConfig
	sendCh    chan frame
	done      chan struct{}
	closeOnce sync.Once
}

// close reports whether this call performed the close. Only the first
// closer reports teardown to the callbacks.
func (sc *sessionConn) close() bool {
	var first bool
	sc.closeOnce.Do(func() {
		close(sc.done)
		first = true
	})
	return first
}

// Client is a domain.RemoteSession over a WebSocket connection.
// One session at a time; Start after Start without End fails.
type Client struct {
	opts    Options
	limiter *rate.Limiter
	logger  *slog.Logger

	mu   sync.Mutex
	conn *sessionConn
}

// NewClient creates a realtime client. It does not connect.
func NewClient(opts Options) *Client {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	sendRate := opts.SendRate
	if sendRate <= 0 {
		sendRate = 4
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(sendRate), int(sendRate)+1),
		logger:  logger,
	}
}

// Start dials the service, performs the session handshake, and begins
// delivering callbacks. It returns once the session is ready or failed;
// no status callbacks are emitted for a failed handshake.
func (c *Client) Start(ctx context.Context, cfg domain.SessionConfig) error {
	if cfg.AgentID == "" {
		return domain.ErrAgentIDMissing
	}

	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return domain.NewDomainError("realtime.Start", domain.ErrStartInFlight, "session already active")
	}
	c.mu.Unlock()

	emitStatus(cfg, domain.StatusConnecting)

	dialCtx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
	defer cancel()

	endpoint, err := sessionURL(c.opts.URL, cfg.AgentID)
	if err != nil {
		return fmt.Errorf("session url: %w", err)
	}

	dialOpts := &websocket.DialOptions{}
	if c.opts.APIKey != "" {
		dialOpts.HTTPHeader = http.Header{"Authorization": {"Bearer " + c.opts.APIKey}}
	}

	ws, _, err := websocket.Dial(dialCtx, endpoint, dialOpts)
	if err != nil {
		return fmt.Errorf("dial service: %w", err)
	}

	// Handshake: send session.init, wait for session.ready.
	init := frame{
		Type:             frameTypeSessionInit,
		AgentID:          cfg.AgentID,
		DynamicVariables: cfg.DynamicVariables,
	}
	if err := wsjson.Write(dialCtx, ws, init); err != nil {
		ws.Close(websocket.StatusProtocolError, "init failed")
		return fmt.Errorf("send init: %w", err)
	}

	var ready frame
	if err := wsjson.Read(dialCtx, ws, &ready); err != nil {
		ws.Close(websocket.StatusProtocolError, "no ready")
		return fmt.Errorf("await ready: %w", err)
	}
	switch ready.Type {
	case frameTypeSessionReady:
	case frameTypeError:
		ws.Close(websocket.StatusNormalClosure, "rejected")
		sentinel := domain.ErrSessionRejected
		if ready.Code == "unauthorized" {
			sentinel = domain.ErrAuthInvalid
		}
		return domain.NewDomainError("realtime.Start", sentinel, ready.Message)
	default:
		ws.Close(websocket.StatusProtocolError, "unexpected frame")
		return fmt.Errorf("unexpected handshake frame %q", ready.Type)
	}

	sc := &sessionConn{
		ws:     ws,
		cfg:    cfg,
		sendCh: make(chan frame, sendQueueSize),
		done:   make(chan struct{}),
	}

	c.mu.Lock()
	c.conn = sc
	c.mu.Unlock()

	c.logger.Info("session established", "agent", cfg.AgentID, "conversation", ready.ConversationID)

	go c.writeLoop(sc)
	go c.readLoop(sc)

	emitStatus(cfg, domain.StatusConnected)
	return nil
}

// End tears the session down. Best-effort: an already-closed session
// returns nil.
func (c *Client) End(_ context.Context) error {
	c.mu.Lock()
	sc := c.conn
	c.conn = nil
	c.mu.Unlock()

	if sc == nil {
		return nil
	}

	emitStatus(sc.cfg, domain.StatusDisconnecting)
	sc.close()
	sc.ws.Close(websocket.StatusNormalClosure, "session ended")
	emitStatus(sc.cfg, domain.StatusDisconnected)
	return nil
}

// SendUserMessage queues user text for delivery over the session.
func (c *Client) SendUserMessage(_ context.Context, text string) error {
	c.mu.Lock()
	sc := c.conn
	c.mu.Unlock()
	if sc == nil {
		return domain.ErrNotConnected
	}

	if !c.limiter.Allow() {
		return domain.NewDomainError("realtime.Send", domain.ErrRateLimit, "outbound message rate exceeded")
	}

	select {
	case <-sc.done:
		return domain.ErrSessionClosed
	case sc.sendCh <- frame{Type: frameTypeUserMessage, Text: text}:
		return nil
	default:
		return domain.NewDomainError("realtime.Send", domain.ErrRateLimit, "send queue full")
	}
}

// readLoop dispatches inbound frames in arrival order until the
// connection closes. Transport failures and error frames both route
// through the error callback and end with a disconnected status.
func (c *Client) readLoop(sc *sessionConn) {
	ctx := context.Background()
	for {
		select {
		case <-sc.done:
			return
		default:
		}

		var f frame
		if err := wsjson.Read(ctx, sc.ws, &f); err != nil {
			select {
			case <-sc.done:
				// Deliberate teardown; End already reported status.
				return
			default:
			}
			c.logger.Warn("session read failed", "error", err)
			c.dropSession(sc, fmt.Errorf("connection lost: %w", err))
			return
		}

		switch f.Type {
		case frameTypeAgentMessage:
			if sc.cfg.OnMessage != nil {
				sc.cfg.OnMessage(domain.MessageEvent{Text: f.Text})
			}
		case frameTypeError:
			c.logger.Warn("service error frame", "code", f.Code, "message", f.Message)
			c.dropSession(sc, domain.NewDomainError("realtime.readLoop", domain.ErrServiceError, f.Message))
			return
		case frameTypePing:
			select {
			case sc.sendCh <- frame{Type: frameTypePong}:
			default:
			}
		default:
			// Unknown frame types are skipped; the protocol may grow.
			c.logger.Debug("ignoring frame", "type", f.Type)
		}
	}
}

// writeLoop flushes queued frames. A write failure means the transport
// is gone for outbound traffic too, so the session is dropped rather
// than left accepting sends that go nowhere.
func (c *Client) writeLoop(sc *sessionConn) {
	for {
		select {
		case <-sc.done:
			return
		case f := <-sc.sendCh:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			err := wsjson.Write(ctx, sc.ws, f)
			cancel()
			if err != nil {
				select {
				case <-sc.done:
					return
				default:
				}
				c.logger.Warn("session write failed", "error", err)
				c.dropSession(sc, fmt.Errorf("connection lost: %w", err))
				return
			}
		}
	}
}

// dropSession closes a failed session and reports the error followed
// by a terminal disconnected status, in that order. Both loops route
// failures here; only the first to arrive reports anything.
func (c *Client) dropSession(sc *sessionConn, err error) {
	c.mu.Lock()
	if c.conn == sc {
		c.conn = nil
	}
	c.mu.Unlock()

	first := sc.close()
	sc.ws.Close(websocket.StatusInternalError, "session dropped")
	if !first {
		return
	}

	if sc.cfg.OnError != nil {
		sc.cfg.OnError(err)
	}
	emitStatus(sc.cfg, domain.StatusDisconnected)
}

func emitStatus(cfg domain.SessionConfig, status domain.SessionStatus) {
	if cfg.OnStatusChange != nil {
		cfg.OnStatusChange(status)
	}
}

// sessionURL appends the agent ID query parameter to the endpoint.
func sessionURL(endpoint, agentID string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("agent_id", agentID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
