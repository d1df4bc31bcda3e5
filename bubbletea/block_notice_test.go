package bubbletea_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/tagstream"
	bt "github.com/fwojciec/tagstream/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNoticeBlock_View(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(tagstream.DefaultTheme())

	t.Run("error", func(t *testing.T) {
		t.Parallel()
		view := bt.NewErrorNotice(errors.New("something broke"), styles).View(80)
		assert.Contains(t, view, "Error: something broke")
	})

	t.Run("aborted", func(t *testing.T) {
		t.Parallel()
		view := bt.NewAbortedNotice(styles).View(80)
		assert.Contains(t, view, "aborted")
		assert.NotContains(t, view, "Error")
	})
}
