// Package uxerror translates raw errors into user-friendly messages with
// recovery hints for the TUI.
package uxerror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sony/gobreaker/v2"

	"parley/internal/adapter/tui/theme"
	"parley/internal/domain"
)

// FriendlyError is a user-facing error with suggestions for recovery.
type FriendlyError struct {
	Title   string   // short heading, e.g. "Connection Refused"
	Message string   // one-liner explanation
	Hints   []string // actionable recovery suggestions
	Raw     string   // original error text (for debug)
}

// Render formats the FriendlyError for display in the TUI message list.
func (fe FriendlyError) Render() string {
	var sb strings.Builder
	sb.WriteString(fe.Title)
	if fe.Message != "" {
		sb.WriteString("\n  ")
		sb.WriteString(fe.Message)
	}
	if len(fe.Hints) > 0 {
		sb.WriteString("\n  Suggestions:")
		for _, h := range fe.Hints {
			sb.WriteString(fmt.Sprintf("\n    %s %s", theme.SymbolBullet, h))
		}
	}
	return sb.String()
}

type errorPattern struct {
	match   func(err error) bool
	produce func(err error) FriendlyError
}

var patterns = []errorPattern{
	// Domain sentinel errors (checked first so errors.Is works through wrapping).
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrAgentIDMissing) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Agent Not Configured",
				Message: "No agent ID is configured for this session.",
				Hints:   []string{"Set agent.id in the config file", "Or set PARLEY_AGENT_ID", "Or pass --agent on the command line"},
				Raw:     err.Error(),
			}
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrSessionRejected) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Session Rejected",
				Message: "The service refused to start a session for this agent.",
				Hints:   []string{"Verify the agent ID exists", "Check that your API key has access to this agent"},
				Raw:     err.Error(),
			}
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrServiceError) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Session Ended by Service",
				Message: "The service reported an error and closed the conversation.",
				Hints:   []string{"Use /new to start a fresh conversation", "Check the service status page if this keeps happening"},
				Raw:     err.Error(),
			}
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrNotConnected) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Not Connected",
				Message: "There is no active conversation to send to.",
				Hints:   []string{"Use /new to start a conversation"},
				Raw:     err.Error(),
			}
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrRateLimit) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Sending Too Fast",
				Message: "Messages are being sent faster than the service allows.",
				Hints:   []string{"Wait a moment before sending again"},
				Raw:     err.Error(),
			}
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, gobreaker.ErrOpenState) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Connection Paused",
				Message: "Repeated connection failures; new attempts are paused briefly.",
				Hints:   []string{"Wait a few seconds and try /new again", "Check the service URL and your network"},
				Raw:     err.Error(),
			}
		},
	},

	// Network / connectivity patterns (string matching for external errors).
	{
		match:   containsAny("connection refused", "dial tcp", "no such host"),
		produce: constantError("Connection Failed", "Could not reach the conversation service.", []string{"Check your internet connection", "Verify service.url in config", "Check if a firewall is blocking the connection"}),
	},
	{
		match:   containsAny("deadline exceeded", "timeout", "context deadline"),
		produce: constantError("Connection Timed Out", "The service took too long to respond.", []string{"Check your network connection", "Increase service.dial_timeout in config"}),
	},

	// Auth patterns.
	{
		match:   containsAny("401", "unauthorized", "invalid api key", "authentication failed"),
		produce: constantError("Authentication Failed", "The API key was rejected.", []string{"Check PARLEY_API_KEY", "Verify the key hasn't expired"}),
	},

	// Rate limiting by the service itself.
	{
		match:   containsAny("429", "rate limit", "too many requests"),
		produce: constantError("Rate Limited", "The service is throttling this account.", []string{"Wait a moment before retrying", "Reduce message frequency"}),
	},
}

// Humanize converts a raw error into a FriendlyError with recovery hints.
func Humanize(err error) FriendlyError {
	if err == nil {
		return FriendlyError{Title: "Unknown Error", Raw: "nil"}
	}

	for _, p := range patterns {
		if p.match(err) {
			return p.produce(err)
		}
	}

	// Fallback for unrecognized errors.
	return FriendlyError{
		Title:   "Unexpected Error",
		Message: err.Error(),
		Hints:   []string{"Try /new to restart the conversation"},
		Raw:     err.Error(),
	}
}

// containsAny returns a match func that checks if the error string contains
// any of the given substrings (case-insensitive).
func containsAny(substrs ...string) func(error) bool {
	return func(err error) bool {
		lower := strings.ToLower(err.Error())
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

// constantError returns a produce func that always returns the same FriendlyError.
func constantError(title, message string, hints []string) func(error) FriendlyError {
	return func(err error) FriendlyError {
		return FriendlyError{
			Title:   title,
			Message: message,
			Hints:   hints,
			Raw:     err.Error(),
		}
	}
}
