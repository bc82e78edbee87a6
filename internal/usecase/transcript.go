package usecase

import (
	"sync"

	"parley/internal/domain"
)

// Transcript is the in-memory ordered list of chat turns. Turns are
// appended in arrival order and only removed by Clear. Appends arrive
// from both the UI goroutine and the transport callback goroutine.
type Transcript struct {
	mu    sync.RWMutex
	turns []domain.Turn
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append pushes a turn to the end of the transcript.
func (t *Transcript) Append(turn domain.Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, turn)
}

// Clear empties the transcript.
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = nil
}

// Turns returns a copy of the transcript in order.
func (t *Transcript) Turns() []domain.Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cp := make([]domain.Turn, len(t.turns))
	copy(cp, t.turns)
	return cp
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}
