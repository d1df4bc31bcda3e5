package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/tagstream"
	bt "github.com/fwojciec/tagstream/bubbletea"
	"github.com/stretchr/testify/require"
)

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, run bt.TurnFunc) bt.Model {
	t.Helper()
	return initModelWithSize(t, run, 80, 24)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, run bt.TurnFunc, width, height int) bt.Model {
	t.Helper()
	m := bt.New(run, &tagstream.Conversation{}, tagstream.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

func reasoning(v string) bt.UpdateMsg {
	return bt.UpdateMsg{Update: tagstream.Update{Segment: tagstream.SegmentReasoning, Value: v}}
}

func answer(v string) bt.UpdateMsg {
	return bt.UpdateMsg{Update: tagstream.Update{Segment: tagstream.SegmentAnswer, Value: v}}
}

func title(v string) bt.UpdateMsg {
	return bt.UpdateMsg{Update: tagstream.Update{Segment: tagstream.SegmentTitle, Value: v}}
}

func digest(v string) bt.UpdateMsg {
	return bt.UpdateMsg{Update: tagstream.Update{Segment: tagstream.SegmentDigest, Value: v}}
}

// nopTurn is a turn function that does nothing.
func nopTurn(_ context.Context, _ *tagstream.Conversation, _ string, _ tagstream.Renderer) error {
	return nil
}
