package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"parley/internal/adapter/tui/components"
	"parley/internal/adapter/tui/theme"
	"parley/internal/adapter/tui/uxerror"
	"parley/internal/domain"
	"parley/internal/usecase"
)

// Conversation is the slice of the session controller the TUI drives.
type Conversation interface {
	Start(ctx context.Context) error
	Send(ctx context.Context, text string) (domain.Turn, error)
	Reset(ctx context.Context) error
	State() domain.ConnState
}

// ChatModelDeps are dependencies injected into the chat model.
type ChatModelDeps struct {
	Conversation Conversation
	Logger       *slog.Logger
	AgentName    string
	MaxTurns     int // ring buffer cap for rendered turns; 0 = unlimited
}

// ChatModel is the root Bubble Tea model for the chat TUI.
type ChatModel struct {
	deps ChatModelDeps

	// Sub-models
	chatView  components.ChatViewModel
	input     components.InputAreaModel
	statusBar components.StatusBarModel
	spinner   spinner.Model

	// State
	connState domain.ConnState
	waiting   bool // true between a sent message and the agent's reply
	width     int
	height    int
	quitting  bool
	vimMode   bool // true when input is blurred and vim keys are active
}

// NewChatModel creates the root chat model.
func NewChatModel(deps ChatModelDeps) ChatModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorInfo)

	agentName := deps.AgentName
	if agentName == "" {
		agentName = theme.SymbolBot
	}

	sb := components.NewStatusBar()
	sb.AgentName = agentName
	sb.Hints = defaultHints()

	chatView := components.NewChatView()
	chatView.SetMaxMessages(deps.MaxTurns)

	return ChatModel{
		deps:      deps,
		chatView:  chatView,
		input:     components.NewInputArea(),
		statusBar: sb,
		spinner:   s,
	}
}

// Init kicks off the spinner and connects the session.
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		startCmd(m.deps.Conversation),
	)
}

// Update handles all incoming messages.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case components.InputSubmitMsg:
		return m.handleSubmit(msg.Value)

	case SessionEventMsg:
		return m.handleSessionEvent(msg.Event)

	case OpDoneMsg:
		if msg.Err != nil {
			friendly := uxerror.Humanize(msg.Err)
			if msg.Op == "send" {
				// A failed send is not a connection failure: the turn was
				// never appended and the session may still be healthy.
				m.chatView.AddMessage(components.ChatMessage{
					Role:    components.RoleSystem,
					Content: "Message not sent: " + friendly.Title,
				})
			} else {
				m.chatView.AddMessage(components.ChatMessage{
					Role:    components.RoleError,
					Content: friendly.Render(),
				})
			}
			m.waiting = false
			m.statusBar.Extra = ""
		}
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Update sub-models (filter mouse events from reaching the input).
	if _, isMouse := msg.(tea.MouseMsg); !isMouse {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.chatView, cmd = m.chatView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleSessionEvent applies a controller event to the UI. The controller
// is the single source of truth; the UI only mirrors it.
func (m ChatModel) handleSessionEvent(ev usecase.Event) (tea.Model, tea.Cmd) {
	switch ev := ev.(type) {
	case usecase.StatusEvent:
		m.connState = ev.State
		m.statusBar.ConnState = ev.State
		if !ev.State.CanSend() {
			m.waiting = false
			m.statusBar.Extra = ""
		}
		m.syncInput()
		return m, nil

	case usecase.TurnEvent:
		role := components.RoleUser
		if ev.Turn.Author == domain.AuthorAssistant {
			role = components.RoleAssistant
			m.waiting = false
			m.statusBar.Extra = ""
		}
		m.chatView.AddMessage(components.ChatMessage{
			Role:      role,
			Content:   ev.Turn.Text,
			Timestamp: ev.Turn.Timestamp,
		})
		return m, nil

	case usecase.SessionErrorEvent:
		friendly := uxerror.Humanize(ev.Err)
		m.chatView.AddMessage(components.ChatMessage{
			Role:    components.RoleError,
			Content: friendly.Render(),
		})
		m.waiting = false
		m.statusBar.Extra = ""
		return m, nil
	}
	return m, nil
}

// View renders the entire chat UI.
func (m ChatModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.width == 0 {
		return "  Initializing..."
	}

	chatContent := m.chatView.View()

	inputView := m.input.View()
	if m.waiting {
		inputView += "\n" + m.spinner.View() + " " + theme.TextMuted.Render("Waiting for reply"+theme.SymbolEllipsis)
	}

	statusView := m.statusBar.View()

	return lipgloss.JoinVertical(lipgloss.Left,
		chatContent,
		components.Divider(m.width),
		inputView,
		statusView,
	)
}

// layout recalculates sizes for all sub-models.
func (m *ChatModel) layout() {
	inputH := 3
	statusH := 1
	dividerH := 1
	contentH := m.height - inputH - statusH - dividerH
	if contentH < 5 {
		contentH = 5
	}

	m.statusBar.SetWidth(m.width)
	m.chatView.SetSize(m.width, contentH)
	m.input.SetWidth(m.width)
}

// syncInput enables the input only while the session can accept sends
// and the user is not in scroll mode.
func (m *ChatModel) syncInput() {
	m.input.SetEnabled(m.connState.CanSend() && !m.vimMode)
}

// isSGRMouseSequence detects SGR mouse escape sequences that may leak
// through as key input (e.g. "<65;38;21M"). These are emitted when
// mouse cell motion tracking is enabled and some terminals pass them
// as key events instead of tea.MouseMsg.
func isSGRMouseSequence(s string) bool {
	if len(s) < 5 || s[0] != '<' {
		return false
	}
	last := s[len(s)-1]
	if last != 'M' && last != 'm' {
		return false
	}
	for _, r := range s[1 : len(s)-1] {
		if r != ';' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// handleKey processes keyboard input.
func (m ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Filter out mouse escape sequences that leaked through as key events.
	if isSGRMouseSequence(msg.String()) {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyCtrlL:
		return m.handleSlashCommand("/new", nil)

	case tea.KeyEsc:
		// Enter scroll mode (blur input).
		if !m.vimMode {
			m.vimMode = true
			m.syncInput()
			m.statusBar.Hints = vimHints()
			return m, nil
		}

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	// Scroll mode: j/k scroll, g/G jump, i to return to input.
	if m.vimMode {
		switch msg.String() {
		case "j", "down":
			m.chatView.Viewport.LineDown(3)
			return m, nil
		case "k", "up":
			m.chatView.Viewport.LineUp(3)
			return m, nil
		case "g":
			m.chatView.Viewport.GotoTop()
			return m, nil
		case "G":
			m.chatView.Viewport.GotoBottom()
			return m, nil
		case "i":
			m.vimMode = false
			m.syncInput()
			m.statusBar.Hints = defaultHints()
			return m, nil
		}
		return m, nil
	}

	// Forward to input area.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func vimHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "j/k", Desc: "Scroll"},
		{Key: "g/G", Desc: "Top/bottom"},
		{Key: "i", Desc: "Input"},
	}
}

// handleSubmit processes user input submission.
func (m ChatModel) handleSubmit(value string) (tea.Model, tea.Cmd) {
	if cmd, args, ok := components.ParseSlashCommand(value); ok {
		return m.handleSlashCommand(cmd, args)
	}

	// The input area is disabled while disconnected, but a submit can
	// still race a drop; the controller rejects it either way.
	if !m.connState.CanSend() {
		friendly := uxerror.Humanize(domain.ErrNotConnected)
		m.chatView.AddMessage(components.ChatMessage{
			Role:    components.RoleError,
			Content: friendly.Render(),
		})
		return m, nil
	}

	m.waiting = true
	return m, sendCmd(m.deps.Conversation, value)
}

// handleSlashCommand processes a slash command.
func (m ChatModel) handleSlashCommand(cmd string, _ []string) (tea.Model, tea.Cmd) {
	switch cmd {
	case "/help":
		m.chatView.AddMessage(components.ChatMessage{
			Role: components.RoleSystem,
			Content: `Available commands:
  /help      - Show this help
  /new       - Start a new conversation
  /status    - Show connection status
  /quit      - Exit parley

Keybindings:
  Enter      - Send message
  Alt+Enter  - New line
  Ctrl+L     - New conversation
  Esc        - Scroll mode (i to return)
  Ctrl+C     - Quit
  PgUp/PgDn  - Scroll chat`,
		})
		return m, nil

	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	case "/new":
		// A reset mid-transition would race the in-flight handshake.
		if !m.connState.CanReset() {
			m.chatView.AddMessage(components.ChatMessage{
				Role:    components.RoleSystem,
				Content: "Connection is changing, try again in a moment.",
			})
			return m, nil
		}
		m.chatView.Clear()
		m.chatView.AddMessage(components.ChatMessage{
			Role:    components.RoleSystem,
			Content: theme.SymbolSuccess + " Starting a new conversation.",
		})
		return m, resetCmd(m.deps.Conversation)

	case "/status":
		m.chatView.AddMessage(components.ChatMessage{
			Role:    components.RoleSystem,
			Content: fmt.Sprintf("Connection: %s\nAgent: %s", m.connState, m.statusBar.AgentName),
		})
		return m, nil

	default:
		m.chatView.AddMessage(components.ChatMessage{
			Role:    components.RoleSystem,
			Content: fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd),
		})
		return m, nil
	}
}

func defaultHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Enter", Desc: "Send"},
		{Key: "Alt+Enter", Desc: "Newline"},
		{Key: "/new", Desc: "Restart"},
		{Key: "Ctrl+C", Desc: "Quit"},
	}
}
