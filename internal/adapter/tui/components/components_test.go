package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/domain"
)

func TestParseSlashCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantCmd  string
		wantArgs []string
		wantOK   bool
	}{
		{"/help", "/help", nil, true},
		{"  /NEW  ", "/new", nil, true},
		{"/status verbose", "/status", []string{"verbose"}, true},
		{"hello", "", nil, false},
		{"", "", nil, false},
	}
	for _, tt := range tests {
		cmd, args, ok := ParseSlashCommand(tt.input)
		if ok != tt.wantOK || cmd != tt.wantCmd {
			t.Errorf("ParseSlashCommand(%q) = %q, %v, %v", tt.input, cmd, args, ok)
			continue
		}
		if len(args) != len(tt.wantArgs) {
			t.Errorf("ParseSlashCommand(%q) args = %v, want %v", tt.input, args, tt.wantArgs)
		}
	}
}

func TestConnIndicatorPerState(t *testing.T) {
	tests := []struct {
		state domain.ConnState
		want  string
	}{
		{domain.StateConnected, "Connected"},
		{domain.StateConnecting, "Connecting"},
		{domain.StateDisconnecting, "Disconnecting"},
		{domain.StateDisconnected, "Disconnected"},
	}
	for _, tt := range tests {
		got := ConnIndicator(tt.state)
		if !strings.Contains(got, tt.want) {
			t.Errorf("ConnIndicator(%v) = %q, want substring %q", tt.state, got, tt.want)
		}
	}
}

func TestMessageListEmptyState(t *testing.T) {
	ml := NewMessageList()
	ml.SetWidth(80)
	if got := ml.View(); !strings.Contains(got, "Start a conversation") {
		t.Errorf("empty view = %q, want the empty-state prompt", got)
	}
}

func TestMessageListRingBuffer(t *testing.T) {
	ml := NewMessageList()
	ml.SetWidth(80)
	ml.SetMaxMessages(3)
	for i := 0; i < 5; i++ {
		ml.Add(ChatMessage{Role: RoleUser, Content: "msg", Timestamp: time.Now()})
	}
	if len(ml.Messages) != 3 {
		t.Errorf("len = %d, want 3", len(ml.Messages))
	}
	if got := ml.TrimmedIndicator(); !strings.Contains(got, "2") {
		t.Errorf("trimmed indicator = %q, want 2 trimmed", got)
	}

	ml.Clear()
	if len(ml.Messages) != 0 || ml.TrimmedIndicator() != "" {
		t.Error("Clear must drop messages and the trimmed counter")
	}
}

func TestInputAreaDisabledIgnoresInput(t *testing.T) {
	ia := NewInputArea()
	if ia.Enabled {
		t.Fatal("input must start disabled")
	}
	ia.SetEnabled(true)
	if !ia.Enabled || !ia.Textarea.Focused() {
		t.Error("SetEnabled(true) must focus the textarea")
	}
	ia.SetEnabled(false)
	if ia.Textarea.Focused() {
		t.Error("SetEnabled(false) must blur the textarea")
	}
}

func TestInputAreaEnterSubmitsAltEnterNewlines(t *testing.T) {
	ia := NewInputArea()
	ia.SetEnabled(true)
	ia.Textarea.SetValue("hello")

	// Alt+Enter inserts a newline and does not submit.
	ia, cmd := ia.Update(tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	if cmd != nil {
		t.Fatal("Alt+Enter must not submit")
	}
	if !strings.Contains(ia.Value(), "\n") {
		t.Fatalf("value = %q, want embedded newline", ia.Value())
	}

	// Plain Enter submits the trimmed value and clears the input.
	ia, cmd = ia.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Enter must submit")
	}
	submit, ok := cmd().(InputSubmitMsg)
	if !ok || submit.Value != "hello" {
		t.Fatalf("submit = %#v, want hello", submit)
	}
	if ia.Value() != "" {
		t.Errorf("value after submit = %q, want empty", ia.Value())
	}
}

func TestWrapTextMultibyte(t *testing.T) {
	// Wrapping must never split a multibyte rune.
	s := strings.Repeat("日本語テキスト ", 20)
	wrapped := wrapText(s, 24)
	if !strings.Contains(wrapped, "\n") {
		t.Fatal("expected wrapped output")
	}
	if strings.Contains(wrapped, "�") {
		t.Error("wrapText produced a replacement character")
	}
}

func TestContentWidthClamped(t *testing.T) {
	if w := ContentWidth(300); w != 100 {
		t.Errorf("ContentWidth(300) = %d, want 100", w)
	}
	if w := ContentWidth(10); w != 40 {
		t.Errorf("ContentWidth(10) = %d, want 40", w)
	}
}
