package sse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/tagstream"
)

// Interface compliance check.
var _ tagstream.Provider = (*Client)(nil)

// Client implements [tagstream.Provider] over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	err        error // deferred option error, reported by Stream
}

// Option configures a [Client].
type Option func(*Client)

// WithAPIKey sends key as a bearer token.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a [Client] for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream posts req to the generate endpoint and returns a [tagstream.Source]
// over the response's event stream.
func (c *Client) Stream(ctx context.Context, req tagstream.Request) (tagstream.Source, error) {
	if c.err != nil {
		return nil, c.err
	}
	body, err := buildRequestBody(req)
	if err != nil {
		return nil, fmt.Errorf("sse: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sse: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sse: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}

	return newStream(resp.Body), nil
}

func buildRequestBody(req tagstream.Request) ([]byte, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	msgs := req.Messages()
	apiMsgs := make([]apiMessage, len(msgs))
	for i, m := range msgs {
		apiMsgs[i] = apiMessage{Role: string(m.Role), Content: m.Content}
	}
	return json.Marshal(apiRequest{
		Model:       req.Model,
		System:      req.SystemPrompt,
		Digest:      req.Digest,
		Messages:    apiMsgs,
		Stream:      true,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
}

func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("sse: HTTP %d (failed to read body: %w)", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Error.Message == "" {
		return fmt.Errorf("sse: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("sse: HTTP %d: %s: %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
}
