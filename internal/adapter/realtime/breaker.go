package realtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"parley/internal/domain"
)

// Default circuit breaker settings.
const (
	defaultBreakerMaxFailures uint32        = 3
	defaultBreakerTimeout     time.Duration = 15 * time.Second
	defaultBreakerInterval    time.Duration = 60 * time.Second
)

// BreakerConfig configures the start circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive start failures before
	// the circuit opens.
	MaxFailures uint32 `yaml:"max_failures"`
	// Timeout is how long the circuit stays open before a probe is allowed.
	Timeout time.Duration `yaml:"timeout"`
	// Interval is the cyclic period of the closed state for clearing
	// failure counts. If 0, failures never reset until the circuit opens.
	Interval time.Duration `yaml:"interval"`
}

// BreakerSession wraps a RemoteSession with a circuit breaker around
// Start. Repeated start failures (a down service, a bad agent ID) fail
// fast instead of hammering the endpoint on every reset. The breaker
// never retries on its own.
type BreakerSession struct {
	inner   domain.RemoteSession
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

// NewBreakerSession wraps inner with a circuit breaker.
// If cfg is zero-valued, sensible defaults are used.
func NewBreakerSession(inner domain.RemoteSession, cfg BreakerConfig, logger *slog.Logger) *BreakerSession {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultBreakerTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultBreakerInterval
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "session-start",
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &BreakerSession{inner: inner, breaker: cb, logger: logger}
}

// Start invokes the wrapped Start through the breaker.
func (b *BreakerSession) Start(ctx context.Context, cfg domain.SessionConfig) error {
	_, err := b.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, b.inner.Start(ctx, cfg)
	})
	return err
}

// End passes through; teardown is never broken.
func (b *BreakerSession) End(ctx context.Context) error {
	return b.inner.End(ctx)
}

// SendUserMessage passes through; sends fail on their own terms.
func (b *BreakerSession) SendUserMessage(ctx context.Context, text string) error {
	return b.inner.SendUserMessage(ctx, text)
}
