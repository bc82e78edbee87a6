package domain

import "testing"

func TestNewTurn(t *testing.T) {
	turn := NewTurn(AuthorUser, "hello")

	if turn.Author != AuthorUser {
		t.Errorf("Author = %q, want user", turn.Author)
	}
	if turn.Text != "hello" {
		t.Errorf("Text = %q, want hello", turn.Text)
	}
	if len(turn.ID) != 26 {
		t.Errorf("ID should be a 26-char ULID, got %q (%d chars)", turn.ID, len(turn.ID))
	}
	if turn.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestNewTurnUniqueIDs(t *testing.T) {
	a := NewTurn(AuthorUser, "a")
	b := NewTurn(AuthorAssistant, "b")
	if a.ID == b.ID {
		t.Errorf("turn IDs should be unique, both %q", a.ID)
	}
}
