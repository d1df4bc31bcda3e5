package bubbletea_test

import (
	"testing"

	"github.com/fwojciec/tagstream"
	bt "github.com/fwojciec/tagstream/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestReasoningBlock_View(t *testing.T) {
	t.Parallel()

	t.Run("collapsed shows indicator label and size", func(t *testing.T) {
		t.Parallel()
		block := bt.NewReasoningBlock(bt.NewStyles(tagstream.DefaultTheme()))
		block.Set("deep thoughts")
		view := block.View(80)
		assert.Contains(t, view, "▶")
		assert.Contains(t, view, "Reasoning")
		assert.Contains(t, view, "(13 chars)")
		assert.NotContains(t, view, "deep thoughts")
	})

	t.Run("toggle expands content", func(t *testing.T) {
		t.Parallel()
		block := bt.NewReasoningBlock(bt.NewStyles(tagstream.DefaultTheme()))
		block.Set("deep thoughts")
		updated, _ := block.Update(bt.ToggleMsg{})
		view := updated.(*bt.ReasoningBlock).View(80)
		assert.Contains(t, view, "▼")
		assert.Contains(t, view, "deep thoughts")
	})

	t.Run("set replaces rather than appends", func(t *testing.T) {
		t.Parallel()
		block := bt.NewReasoningBlock(bt.NewStyles(tagstream.DefaultTheme()))
		block.Update(bt.ToggleMsg{})
		block.Set("first")
		block.Set("first second")
		view := block.View(80)
		assert.Contains(t, view, "first second")
		assert.NotContains(t, view, "firstfirst")
	})

	t.Run("expanded with empty content shows only header", func(t *testing.T) {
		t.Parallel()
		block := bt.NewReasoningBlock(bt.NewStyles(tagstream.DefaultTheme()))
		updated, _ := block.Update(bt.ToggleMsg{})
		view := updated.(*bt.ReasoningBlock).View(80)
		assert.Contains(t, view, "▼ Reasoning")
		assert.NotContains(t, view, "\n")
	})

	t.Run("size counts user-perceived characters", func(t *testing.T) {
		t.Parallel()
		block := bt.NewReasoningBlock(bt.NewStyles(tagstream.DefaultTheme()))
		// "e" followed by a combining acute accent is one character.
		block.Set("he\u0301llo 👍🏽")
		assert.Contains(t, block.View(80), "(7 chars)")
	})
}
