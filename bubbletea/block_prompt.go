package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*PromptBlock)(nil)

const (
	promptMarker = "> "
	promptIndent = "  "
)

// PromptBlock shows the prompt that started a turn. Wrapped and multi-line
// prompts keep their continuation lines aligned under the first.
type PromptBlock struct {
	prompt string
	styles Styles
}

// NewPromptBlock creates a PromptBlock for prompt.
func NewPromptBlock(prompt string, styles Styles) *PromptBlock {
	return &PromptBlock{prompt: prompt, styles: styles}
}

func (b *PromptBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *PromptBlock) View(width int) string {
	inner := width - lipgloss.Width(promptMarker)
	if inner < 1 {
		inner = 1
	}
	wrapped := lipgloss.NewStyle().Width(inner).Render(b.prompt)
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		prefix := promptIndent
		if i == 0 {
			prefix = b.styles.UserMsg.Render(promptMarker)
		}
		lines[i] = fill(width, prefix+line)
	}
	return strings.Join(lines, "\n")
}
