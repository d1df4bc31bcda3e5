package tagstream

import (
	"context"
	"time"
)

// TurnStatus records how a turn's stream ended.
type TurnStatus string

const (
	// TurnComplete means the stream ended cleanly and the decoder was finalized.
	TurnComplete TurnStatus = "complete"
	// TurnAborted means the stream was abandoned before it ended.
	TurnAborted TurnStatus = "aborted"
)

// Turn is one prompt and the segments decoded from its response.
type Turn struct {
	Prompt    string
	Reasoning string
	Answer    string
	Model     string
	Strategy  Strategy
	Status    TurnStatus
	Timestamp time.Time
}

// Conversation owns the per-conversation title and digest and the history of
// turns. Only one decoder may publish into a conversation at a time.
type Conversation struct {
	ID           string
	Title        string
	Digest       string
	SystemPrompt string
	Turns        []Turn
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the listing view of a stored conversation.
type Summary struct {
	ID        string
	Title     string
	Digest    string
	Turns     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summarize returns the listing view of c.
func (c Conversation) Summarize() Summary {
	return Summary{
		ID:        c.ID,
		Title:     c.Title,
		Digest:    c.Digest,
		Turns:     len(c.Turns),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// Store persists conversations.
type Store interface {
	Save(ctx context.Context, c Conversation) error
	// Load returns ErrConversationNotFound when id is unknown.
	Load(ctx context.Context, id string) (Conversation, error)
	// List returns summaries, most recently updated first.
	List(ctx context.Context) ([]Summary, error)
}
