package bubbletea

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*NoticeBlock)(nil)

// NoticeBlock is a one-line status entry after a turn that did not
// complete.
type NoticeBlock struct {
	text  string
	style lipgloss.Style
}

// NewErrorNotice reports a turn that failed with err.
func NewErrorNotice(err error, styles Styles) *NoticeBlock {
	return &NoticeBlock{text: fmt.Sprintf("Error: %v", err), style: styles.Error}
}

// NewAbortedNotice marks a stored turn whose stream never finished.
func NewAbortedNotice(styles Styles) *NoticeBlock {
	return &NoticeBlock{text: "Turn aborted before the stream ended", style: styles.Muted}
}

func (b *NoticeBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *NoticeBlock) View(width int) string {
	return fill(width, b.style.Render(b.text))
}
