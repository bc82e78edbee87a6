package domain

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Author identifies who produced a transcript turn.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Turn is a single message in the transcript. Turns are ordered by
// arrival and never mutated or removed except by a full reset.
type Turn struct {
	ID        string    `json:"id"` // ULID
	Author    Author    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn creates a turn with a generated ULID and the current time.
func NewTurn(author Author, text string) Turn {
	now := time.Now()
	return Turn{
		ID:        generateULID(now),
		Author:    author,
		Text:      text,
		Timestamp: now,
	}
}

func generateULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
