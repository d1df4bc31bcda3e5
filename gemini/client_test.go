package gemini_test

import (
	"testing"

	"github.com/fwojciec/tagstream"
	"github.com/fwojciec/tagstream/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestConvertMessages(t *testing.T) {
	t.Parallel()
	got := gemini.ConvertMessages([]tagstream.Message{
		{Role: tagstream.RoleUser, Content: "Hello"},
		{Role: tagstream.RoleAssistant, Content: "Hi"},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "user", got[0].Role)
	assert.Equal(t, []*genai.Part{{Text: "Hello"}}, got[0].Parts)
	assert.Equal(t, "model", got[1].Role)
	assert.Equal(t, []*genai.Part{{Text: "Hi"}}, got[1].Parts)
}

func TestConvertRequest(t *testing.T) {
	t.Parallel()
	temp := 0.5
	contents, config := gemini.ConvertRequest(tagstream.Request{
		SystemPrompt: "Answer in tags.",
		Digest:       "User likes weather.",
		History: []tagstream.Turn{
			{Prompt: "q1", Answer: "a1", Status: tagstream.TurnComplete},
			{Prompt: "lost", Status: tagstream.TurnAborted},
		},
		Prompt:      "q2",
		MaxTokens:   512,
		Temperature: &temp,
	})

	require.Len(t, contents, 3)
	assert.Equal(t, "q2", contents[2].Parts[0].Text)

	assert.Equal(t, int32(512), config.MaxOutputTokens)
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.5, *config.Temperature, 1e-6)
	require.NotNil(t, config.SystemInstruction)
	assert.Equal(t, "Answer in tags.\n\nConversation so far: User likes weather.", config.SystemInstruction.Parts[0].Text)
}

func TestConvertRequest_Defaults(t *testing.T) {
	t.Parallel()
	_, config := gemini.ConvertRequest(tagstream.Request{Prompt: "hi"})
	assert.Equal(t, int32(65536), config.MaxOutputTokens)
	assert.Nil(t, config.Temperature)
	assert.Nil(t, config.SystemInstruction)
}

func TestConvertRequest_DigestOnly(t *testing.T) {
	t.Parallel()
	_, config := gemini.ConvertRequest(tagstream.Request{Prompt: "hi", Digest: "d"})
	require.NotNil(t, config.SystemInstruction)
	assert.Equal(t, "Conversation so far: d", config.SystemInstruction.Parts[0].Text)
}
