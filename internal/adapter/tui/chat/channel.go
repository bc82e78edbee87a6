package chat

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/usecase"
)

// TUI runs the Bubble Tea chat program on top of a session controller.
type TUI struct {
	logger     *slog.Logger
	program    *tea.Program
	controller *usecase.Controller
	agentName  string
	maxTurns   int
}

// NewTUI creates the chat TUI. Run starts it.
func NewTUI(controller *usecase.Controller, agentName string, maxTurns int, logger *slog.Logger) *TUI {
	return &TUI{
		logger:     logger,
		controller: controller,
		agentName:  agentName,
		maxTurns:   maxTurns,
	}
}

// Run creates the Bubble Tea program and blocks until it exits.
func (t *TUI) Run(ctx context.Context) error {
	model := NewChatModel(ChatModelDeps{
		Conversation: t.controller,
		Logger:       t.logger,
		AgentName:    t.agentName,
		MaxTurns:     t.maxTurns,
	})

	t.program = tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Forward controller events into the Bubble Tea update loop.
	// program.Send is safe to call from the session goroutines; the
	// update loop stays the single writer of UI state.
	t.controller.SetNotify(func(ev usecase.Event) {
		t.program.Send(SessionEventMsg{Event: ev})
	})
	defer t.controller.SetNotify(nil)

	// Monitor context cancellation to quit the program.
	go func() {
		<-ctx.Done()
		if t.program != nil {
			t.program.Send(QuitMsg{})
		}
	}()

	_, err := t.program.Run()
	return err
}

// Stop signals the Bubble Tea program to quit.
func (t *TUI) Stop(_ context.Context) error {
	if t.program != nil {
		t.program.Send(QuitMsg{})
	}
	return nil
}
