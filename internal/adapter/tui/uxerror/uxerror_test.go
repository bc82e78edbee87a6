package uxerror

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sony/gobreaker/v2"

	"parley/internal/domain"
)

func TestHumanizeDomainSentinels(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantTitle string
	}{
		{"agent id missing", domain.ErrAgentIDMissing, "Agent Not Configured"},
		{"session rejected", domain.ErrSessionRejected, "Session Rejected"},
		{"service error", domain.ErrServiceError, "Session Ended by Service"},
		{"not connected", domain.ErrNotConnected, "Not Connected"},
		{"rate limit", domain.ErrRateLimit, "Sending Too Fast"},
		{"breaker open", gobreaker.ErrOpenState, "Connection Paused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := Humanize(tt.err)
			if fe.Title != tt.wantTitle {
				t.Errorf("Humanize(%v).Title = %q, want %q", tt.err, fe.Title, tt.wantTitle)
			}
		})
	}
}

func TestHumanizeWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("starting session: %w", domain.ErrSessionRejected)
	if fe := Humanize(wrapped); fe.Title != "Session Rejected" {
		t.Errorf("Title = %q, want Session Rejected", fe.Title)
	}
}

func TestHumanizeNetworkPatterns(t *testing.T) {
	fe := Humanize(errors.New("dial tcp 10.0.0.1:443: connection refused"))
	if fe.Title != "Connection Failed" {
		t.Errorf("Title = %q, want Connection Failed", fe.Title)
	}
	fe = Humanize(errors.New("context deadline exceeded"))
	if fe.Title != "Connection Timed Out" {
		t.Errorf("Title = %q, want Connection Timed Out", fe.Title)
	}
}

func TestHumanizeFallback(t *testing.T) {
	fe := Humanize(errors.New("something odd"))
	if fe.Title != "Unexpected Error" {
		t.Errorf("Title = %q, want Unexpected Error", fe.Title)
	}
	if fe.Raw != "something odd" {
		t.Errorf("Raw = %q", fe.Raw)
	}
}

func TestRenderIncludesHints(t *testing.T) {
	fe := FriendlyError{
		Title:   "Oops",
		Message: "It broke.",
		Hints:   []string{"Try again"},
	}
	out := fe.Render()
	if !strings.Contains(out, "Oops") || !strings.Contains(out, "Suggestions:") || !strings.Contains(out, "Try again") {
		t.Errorf("Render() = %q", out)
	}
}
