package tagstream

import "context"

// Source delivers the raw text deltas of one generation stream.
//
// Next returns the next delta. It returns io.EOF once the stream has ended
// cleanly, either because the finished marker was seen or because the
// transport closed. Any other error is a transport defect; the stream is then
// abandoned. Cancellation flows through the context passed to
// Provider.Stream().
type Source interface {
	Next() (string, error)
	Close() error
}

// Provider starts generation streams.
type Provider interface {
	Stream(ctx context.Context, req Request) (Source, error)
}

// Message is a prior exchange sent back to the generation service.
type Message struct {
	Role    Role
	Content string
}

// Request carries the prompt and generation parameters for one turn.
// The provider uses its own defaults when fields are zero/nil.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Digest       string // running conversation digest, if any
	History      []Turn
	Prompt       string
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
}

// Messages flattens the completed history and the new prompt into
// alternating user/assistant messages. Aborted turns are skipped.
func (r Request) Messages() []Message {
	var msgs []Message
	for _, t := range r.History {
		if t.Status != TurnComplete {
			continue
		}
		msgs = append(msgs,
			Message{Role: RoleUser, Content: t.Prompt},
			Message{Role: RoleAssistant, Content: t.Answer},
		)
	}
	return append(msgs, Message{Role: RoleUser, Content: r.Prompt})
}
