// Package sse implements [tagstream.Provider] for a generation service that
// streams raw model text over Server-Sent Events.
//
// Each SSE record carries one JSON chunk {"delta": "...", "finished": bool}.
// The text is passed to the decoder untouched; tags inside it are not
// interpreted here. A record with finished set, or a literal "data: [DONE]",
// ends the stream cleanly.
package sse

const (
	defaultMaxTokens = 4096
	generatePath     = "/v1/generate"
	doneMarker       = "[DONE]"
)

// apiRequest is the JSON body sent to the generate endpoint.
type apiRequest struct {
	Model       string       `json:"model,omitempty"`
	System      string       `json:"system,omitempty"`
	Digest      string       `json:"digest,omitempty"`
	Messages    []apiMessage `json:"messages"`
	Stream      bool         `json:"stream"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// apiChunk is the payload of one data record.
type apiChunk struct {
	Delta    string `json:"delta"`
	Finished bool   `json:"finished"`
}

type apiErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// apiErrorResponse is the JSON body of non-200 responses and of
// "event: error" records.
type apiErrorResponse struct {
	Error apiErrorDetail `json:"error"`
}
