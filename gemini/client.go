package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/tagstream"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ tagstream.Provider = (*Client)(nil)

// Client implements [tagstream.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [tagstream.Source] over the generated text.
func (c *Client) Stream(ctx context.Context, req tagstream.Request) (tagstream.Source, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	contents, config := ConvertRequest(req)
	seq := c.client.Models.GenerateContentStream(ctx, model, contents, config)
	return NewStreamFromIter(ctx, seq), nil
}

// ConvertRequest converts a tagstream Request to genai contents and config.
// Exported for testing.
func ConvertRequest(req tagstream.Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	return ConvertMessages(req.Messages()), buildConfig(req)
}

func buildConfig(req tagstream.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}

	if system := systemInstruction(req); system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// systemInstruction joins the system prompt and the running digest.
func systemInstruction(req tagstream.Request) string {
	switch {
	case req.Digest == "":
		return req.SystemPrompt
	case req.SystemPrompt == "":
		return "Conversation so far: " + req.Digest
	default:
		return req.SystemPrompt + "\n\nConversation so far: " + req.Digest
	}
}

// ConvertMessages converts tagstream Messages to genai Contents.
// Exported for testing.
func ConvertMessages(msgs []tagstream.Message) []*genai.Content {
	result := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.Role == tagstream.RoleAssistant {
			role = "model"
		}
		result = append(result, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return result
}
