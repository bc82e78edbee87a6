// Package chat implements the Bubble Tea chat TUI for parley.
package chat

import "parley/internal/usecase"

// SessionEventMsg wraps a controller event injected via program.Send.
// This is the bridge between the session goroutines and the update loop.
type SessionEventMsg struct {
	Event usecase.Event
}

// OpDoneMsg signals that a controller operation finished.
type OpDoneMsg struct {
	Op  string // "start", "send", "reset"
	Err error
}

// QuitMsg signals the program to exit.
type QuitMsg struct{}
