package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"parley/internal/adapter/tui/theme"
	"parley/internal/domain"
)

// KeyHint represents a single keybinding hint shown in the status bar.
type KeyHint struct {
	Key  string // e.g. "Enter"
	Desc string // e.g. "Send"
}

// StatusBarModel renders a bottom status bar with the connection
// indicator, keybinding hints, and agent info.
type StatusBarModel struct {
	Hints     []KeyHint // show 4-5 most important hints
	AgentName string
	ConnState domain.ConnState
	Extra     string // additional status text (e.g. a transient error)
	width     int
}

// NewStatusBar creates a status bar with no hints.
func NewStatusBar() StatusBarModel {
	return StatusBarModel{}
}

// SetWidth updates the available width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// ConnIndicator renders the connection indicator for a state. It is a
// pure function of the state so the bar never drifts from the session.
func ConnIndicator(s domain.ConnState) string {
	switch s {
	case domain.StateConnected:
		return theme.ConnConnected.Render(theme.SymbolDot + " Connected")
	case domain.StateConnecting:
		return theme.ConnConnecting.Render(theme.SymbolDot + " Connecting" + theme.SymbolEllipsis)
	case domain.StateDisconnecting:
		return theme.ConnDisconnecting.Render(theme.SymbolDot + " Disconnecting" + theme.SymbolEllipsis)
	default:
		return theme.ConnDisconnected.Render(theme.SymbolDot + " Disconnected")
	}
}

// View renders the status bar as a single line.
func (m StatusBarModel) View() string {
	// Left side: connection indicator then keybinding hints.
	parts := []string{ConnIndicator(m.ConnState)}
	for _, h := range m.Hints {
		key := theme.StatusKey.Render(h.Key)
		parts = append(parts, key+": "+h.Desc)
	}
	left := strings.Join(parts, "  "+theme.Dim.Render("|")+"  ")

	// Right side: agent info and transient status text.
	var right string
	if m.AgentName != "" {
		right = theme.TextMuted.Render(m.AgentName)
	}
	if m.Extra != "" {
		if right != "" {
			right += "  "
		}
		right += theme.TextInfo.Render(m.Extra)
	}

	// Join left and right, padding the gap.
	leftW := lipgloss.Width(left)
	rightW := lipgloss.Width(right)
	gap := m.width - leftW - rightW
	if gap < 1 {
		gap = 1
	}

	bar := left + strings.Repeat(" ", gap) + right
	return theme.StatusBar.Width(m.width).Render(bar)
}
