package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/tagstream"
	"github.com/fwojciec/tagstream/goldmark"
)

var _ MessageBlock = (*AnswerBlock)(nil)

// AnswerBlock renders the answer segment as markdown. Paragraphs that can no
// longer change (everything before the last blank line outside a code fence)
// are rendered once per width and cached; only the trailing paragraph is
// re-rendered on each update.
type AnswerBlock struct {
	content string
	theme   tagstream.Theme

	finalizedRaw     string
	finalizedByWidth map[int]string
}

// NewAnswerBlock creates an empty AnswerBlock.
func NewAnswerBlock(theme tagstream.Theme) *AnswerBlock {
	return &AnswerBlock{
		theme:            theme,
		finalizedByWidth: make(map[int]string),
	}
}

// Set replaces the displayed answer with its current full value.
func (b *AnswerBlock) Set(value string) {
	if b.finalizedRaw != "" && !strings.HasPrefix(value, b.finalizedRaw+"\n\n") {
		b.finalizedRaw = ""
		clear(b.finalizedByWidth)
	}
	b.content = value
	b.promoteFinalized()
}

func (b *AnswerBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *AnswerBlock) View(width int) string {
	finalized := b.renderFinalized(width)
	trailing := b.trailingRaw()
	if trailing == "" {
		return finalized
	}
	rendered := goldmark.Render(trailing, width, b.theme)
	if strings.TrimSpace(ansi.Strip(rendered)) == "" {
		return finalized
	}
	if finalized == "" {
		return rendered
	}
	return strings.TrimRight(finalized, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// promoteFinalized moves the finalized boundary to the last "\n\n" whose
// prefix has no open code fence.
func (b *AnswerBlock) promoteFinalized() {
	raw := b.content
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := raw[:idx]
		if !hasUnclosedFence(candidate) {
			if candidate != b.finalizedRaw {
				b.finalizedRaw = candidate
				clear(b.finalizedByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *AnswerBlock) renderFinalized(width int) string {
	if width <= 0 || b.finalizedRaw == "" {
		return ""
	}
	if cached, ok := b.finalizedByWidth[width]; ok {
		return cached
	}
	rendered := goldmark.Render(b.finalizedRaw, width, b.theme)
	b.finalizedByWidth[width] = rendered
	return rendered
}

func (b *AnswerBlock) trailingRaw() string {
	if b.finalizedRaw == "" {
		return b.content
	}
	return strings.TrimPrefix(b.content, b.finalizedRaw+"\n\n")
}

// hasUnclosedFence reports an odd number of "```" markers. Triple backticks
// inside inline code spans are miscounted.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
