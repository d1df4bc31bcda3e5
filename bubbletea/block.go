package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MessageBlock is one entry of the transcript. View receives the viewport
// width so the model owns layout.
type MessageBlock interface {
	Update(tea.Msg) (MessageBlock, tea.Cmd)
	View(width int) string
}

// ToggleMsg flips a collapsible block between its summary and full text.
type ToggleMsg struct{}

// fill pads content to width so block backgrounds span the viewport.
func fill(width int, content string) string {
	return lipgloss.NewStyle().Width(width).Render(content)
}
