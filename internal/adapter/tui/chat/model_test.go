package chat

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/adapter/tui/components"
	"parley/internal/domain"
	"parley/internal/usecase"
)

type fakeConversation struct {
	mu         sync.Mutex
	startCalls int
	sendCalls  []string
	resetCalls int
	state      domain.ConnState
	sendErr    error
}

func (f *fakeConversation) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	return nil
}

func (f *fakeConversation) Send(ctx context.Context, text string) (domain.Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return domain.Turn{}, f.sendErr
	}
	f.sendCalls = append(f.sendCalls, text)
	return domain.NewTurn(domain.AuthorUser, text), nil
}

func (f *fakeConversation) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCalls++
	return nil
}

func (f *fakeConversation) State() domain.ConnState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// newTestModel returns a sized model so View renders real content.
func newTestModel(conv *fakeConversation) ChatModel {
	m := NewChatModel(ChatModelDeps{Conversation: conv, AgentName: "Test Agent"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(ChatModel)
}

func applyStatus(t *testing.T, m ChatModel, state domain.ConnState) ChatModel {
	t.Helper()
	updated, _ := m.Update(SessionEventMsg{Event: usecase.StatusEvent{State: state}})
	return updated.(ChatModel)
}

func TestEmptyStateAfterConnect(t *testing.T) {
	m := newTestModel(&fakeConversation{})
	m = applyStatus(t, m, domain.StateConnecting)
	m = applyStatus(t, m, domain.StateConnected)

	view := m.View()
	if !strings.Contains(view, "Start a conversation") {
		t.Error("connected empty view must show the start prompt")
	}
	if !strings.Contains(view, "Connected") {
		t.Error("status bar must show Connected")
	}
	if !m.input.Enabled {
		t.Error("input must be enabled once connected")
	}
}

func TestInputDisabledUntilConnected(t *testing.T) {
	m := newTestModel(&fakeConversation{})
	if m.input.Enabled {
		t.Error("input must start disabled")
	}
	m = applyStatus(t, m, domain.StateConnecting)
	if m.input.Enabled {
		t.Error("input must stay disabled while connecting")
	}
}

func TestSubmitSendsAndShowsUserTurn(t *testing.T) {
	conv := &fakeConversation{}
	m := newTestModel(conv)
	m = applyStatus(t, m, domain.StateConnected)

	updated, cmd := m.Update(components.InputSubmitMsg{Value: "Hello"})
	m = updated.(ChatModel)
	if cmd == nil {
		t.Fatal("submit must produce a send command")
	}
	msg := cmd()
	done, ok := msg.(OpDoneMsg)
	if !ok || done.Op != "send" || done.Err != nil {
		t.Fatalf("cmd result = %#v", msg)
	}
	if len(conv.sendCalls) != 1 || conv.sendCalls[0] != "Hello" {
		t.Fatalf("sendCalls = %v", conv.sendCalls)
	}

	// The user turn arrives back through the event stream.
	turn := domain.NewTurn(domain.AuthorUser, "Hello")
	updated, _ = m.Update(SessionEventMsg{Event: usecase.TurnEvent{Turn: turn}})
	m = updated.(ChatModel)
	if !strings.Contains(m.View(), "Hello") {
		t.Error("view must show the submitted turn")
	}
}

func TestSubmitWhileDisconnectedShowsError(t *testing.T) {
	conv := &fakeConversation{}
	m := newTestModel(conv)

	updated, cmd := m.Update(components.InputSubmitMsg{Value: "Hello"})
	m = updated.(ChatModel)
	if cmd != nil {
		t.Error("no send command while disconnected")
	}
	if len(conv.sendCalls) != 0 {
		t.Errorf("sendCalls = %v, want none", conv.sendCalls)
	}
	if !strings.Contains(m.View(), "Not Connected") {
		t.Error("view must explain there is no active conversation")
	}
}

func TestErrorWhileConnectedDisablesInput(t *testing.T) {
	m := newTestModel(&fakeConversation{})
	m = applyStatus(t, m, domain.StateConnected)

	updated, _ := m.Update(SessionEventMsg{Event: usecase.SessionErrorEvent{Err: domain.ErrServiceError}})
	m = updated.(ChatModel)
	m = applyStatus(t, m, domain.StateDisconnected)

	if m.input.Enabled {
		t.Error("input must be disabled after the session drops")
	}
	if !strings.Contains(m.View(), "Session Ended by Service") {
		t.Error("view must show the humanized error")
	}
}

func TestNewCommandResetsWhenSettled(t *testing.T) {
	conv := &fakeConversation{}
	m := newTestModel(conv)
	m = applyStatus(t, m, domain.StateConnected)

	updated, cmd := m.Update(components.InputSubmitMsg{Value: "/new"})
	m = updated.(ChatModel)
	if cmd == nil {
		t.Fatal("/new must produce a reset command")
	}
	cmd()
	if conv.resetCalls != 1 {
		t.Errorf("resetCalls = %d, want 1", conv.resetCalls)
	}
}

func TestNewCommandBlockedDuringTransition(t *testing.T) {
	conv := &fakeConversation{}
	m := newTestModel(conv)
	m = applyStatus(t, m, domain.StateConnecting)

	updated, cmd := m.Update(components.InputSubmitMsg{Value: "/new"})
	m = updated.(ChatModel)
	if cmd != nil {
		cmd()
	}
	if conv.resetCalls != 0 {
		t.Errorf("resetCalls = %d, want 0", conv.resetCalls)
	}
	if !strings.Contains(m.View(), "Connection is changing") {
		t.Error("view must explain why /new was ignored")
	}
}

func TestStatusCommandShowsState(t *testing.T) {
	m := newTestModel(&fakeConversation{})
	m = applyStatus(t, m, domain.StateConnected)

	updated, _ := m.Update(components.InputSubmitMsg{Value: "/status"})
	m = updated.(ChatModel)
	view := m.View()
	if !strings.Contains(view, "connected") || !strings.Contains(view, "Test Agent") {
		t.Error("/status must report connection state and agent")
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(&fakeConversation{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("Ctrl+C must quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Ctrl+C must produce tea.Quit")
	}
}

func TestFailedSendShowsSystemLine(t *testing.T) {
	conv := &fakeConversation{sendErr: domain.ErrRateLimit}
	m := newTestModel(conv)
	m = applyStatus(t, m, domain.StateConnected)

	updated, cmd := m.Update(components.InputSubmitMsg{Value: "Hello"})
	m = updated.(ChatModel)
	updated, _ = m.Update(cmd())
	m = updated.(ChatModel)

	view := m.View()
	if !strings.Contains(view, "Message not sent") {
		t.Error("failed send must surface as a system line")
	}
	if len(conv.sendCalls) != 0 {
		t.Errorf("sendCalls = %v, want none recorded", conv.sendCalls)
	}
	if m.waiting {
		t.Error("waiting must clear after a failed send")
	}
}

func TestAssistantReplyClearsWaiting(t *testing.T) {
	conv := &fakeConversation{}
	m := newTestModel(conv)
	m = applyStatus(t, m, domain.StateConnected)

	updated, _ := m.Update(components.InputSubmitMsg{Value: "Hi"})
	m = updated.(ChatModel)
	if !m.waiting {
		t.Fatal("waiting must be set after a send")
	}

	turn := domain.NewTurn(domain.AuthorAssistant, "Hi there")
	updated, _ = m.Update(SessionEventMsg{Event: usecase.TurnEvent{Turn: turn}})
	m = updated.(ChatModel)
	if m.waiting {
		t.Error("assistant reply must clear waiting")
	}
	if !strings.Contains(m.View(), "Hi there") {
		t.Error("view must show the assistant reply")
	}
}
