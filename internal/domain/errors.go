package domain

import "fmt"

// Sentinel errors for the domain layer.
var (
	ErrAgentIDMissing = fmt.Errorf("agent ID not configured")
	ErrNotConnected   = fmt.Errorf("session not connected")
	ErrEmptyMessage   = fmt.Errorf("message is empty")
	ErrStartInFlight  = fmt.Errorf("session start already in flight")
	ErrSessionClosed  = fmt.Errorf("session closed")

	// Transport errors reported by the realtime adapter.
	ErrSessionRejected = fmt.Errorf("session rejected by service")
	ErrServiceError    = fmt.Errorf("service reported an error")
	ErrRateLimit       = fmt.Errorf("rate limit exceeded")
	ErrAuthInvalid     = fmt.Errorf("authentication failed")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Controller.Send")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
