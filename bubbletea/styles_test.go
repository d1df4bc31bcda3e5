package bubbletea_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/tagstream"
	bt "github.com/fwojciec/tagstream/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNewStyles(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(tagstream.DefaultTheme())

	assert.Equal(t, lipgloss.Color("4"), styles.UserMsg.GetForeground())
	assert.True(t, styles.UserMsg.GetBold())

	assert.Equal(t, lipgloss.Color("8"), styles.Reasoning.GetForeground())
	assert.True(t, styles.Reasoning.GetFaint())

	assert.Equal(t, lipgloss.Color("5"), styles.Title.GetForeground())
	assert.True(t, styles.Title.GetBold())

	assert.Equal(t, lipgloss.Color("6"), styles.Digest.GetForeground())
	assert.True(t, styles.Digest.GetItalic())

	assert.Equal(t, lipgloss.Color("1"), styles.Error.GetForeground())

	assert.Equal(t, lipgloss.Color("8"), styles.Muted.GetForeground())
	assert.True(t, styles.Muted.GetFaint())

	assert.Equal(t, lipgloss.Color("5"), styles.Accent.GetForeground())
	assert.Equal(t, lipgloss.Color("4"), styles.UserBg.GetBackground())
}

func TestNewStylesNegativeIndexYieldsNoColor(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(tagstream.Theme{UserMsg: -1, Title: -1})

	assert.Equal(t, lipgloss.NoColor{}, styles.UserMsg.GetForeground())
	assert.Equal(t, lipgloss.NoColor{}, styles.Title.GetForeground())
}
