package bubbletea

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/uniseg"
)

var _ MessageBlock = (*ReasoningBlock)(nil)

// ReasoningBlock renders the reasoning segment with a collapsible toggle.
type ReasoningBlock struct {
	content   string
	collapsed bool
	styles    Styles
}

// NewReasoningBlock creates a ReasoningBlock that starts collapsed.
func NewReasoningBlock(styles Styles) *ReasoningBlock {
	return &ReasoningBlock{collapsed: true, styles: styles}
}

// Set replaces the displayed reasoning with its current full value.
func (b *ReasoningBlock) Set(value string) {
	b.content = value
}

func (b *ReasoningBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ReasoningBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)

	label := "▶ Reasoning"
	if !b.collapsed {
		label = "▼ Reasoning"
	} else if b.content != "" {
		label += fmt.Sprintf(" (%d chars)", uniseg.GraphemeClusterCount(b.content))
	}
	header := b.styles.Reasoning.Render(wrap.Render(label))
	if b.collapsed || b.content == "" {
		return header
	}
	content := b.styles.Reasoning.Render(wrap.Render(b.content))
	return header + "\n" + content
}
