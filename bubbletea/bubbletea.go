// Package bubbletea provides a Bubble Tea TUI for live tagged-stream
// conversations.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/tagstream"
)

// TurnFunc runs one conversation turn for prompt. The renderer receives the
// full value of each segment as it changes. The function blocks until the
// turn completes or the context is cancelled.
type TurnFunc func(ctx context.Context, conv *tagstream.Conversation, prompt string, r tagstream.Renderer) error

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. When the context is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// UpdateMsg wraps a segment update for delivery to the Bubble Tea model.
type UpdateMsg struct {
	Update tagstream.Update
}

// TurnDoneMsg signals that a turn has finished.
type TurnDoneMsg struct {
	Err error
}
