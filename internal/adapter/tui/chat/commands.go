package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// startCmd connects the session in a background goroutine.
func startCmd(conv Conversation) tea.Cmd {
	return func() tea.Msg {
		return OpDoneMsg{Op: "start", Err: conv.Start(context.Background())}
	}
}

// sendCmd forwards a user message in a background goroutine. The user
// turn itself arrives back through the controller event stream.
func sendCmd(conv Conversation, text string) tea.Cmd {
	return func() tea.Msg {
		_, err := conv.Send(context.Background(), text)
		return OpDoneMsg{Op: "send", Err: err}
	}
}

// resetCmd tears down and restarts the conversation.
func resetCmd(conv Conversation) tea.Cmd {
	return func() tea.Msg {
		return OpDoneMsg{Op: "reset", Err: conv.Reset(context.Background())}
	}
}
