package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fwojciec/tagstream"
	"google.golang.org/genai"
)

// stream implements [tagstream.Source] by wrapping the genai SDK's streaming
// iterator. Each response chunk's text parts are joined into one delta.
type stream struct {
	ctx    context.Context
	pull   func() (*genai.GenerateContentResponse, error, bool)
	stop   func()
	done   bool
	closed bool
	err    error
}

// Interface compliance check.
var _ tagstream.Source = (*stream)(nil)

// NewStreamFromIter wraps a genai response iterator as a [tagstream.Source].
// Exported for testing.
func NewStreamFromIter(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) tagstream.Source {
	next, stop := iter.Pull2(seq)
	return &stream{ctx: ctx, pull: next, stop: stop}
}

func (s *stream) Next() (string, error) {
	switch {
	case s.closed:
		return "", fmt.Errorf("gemini: %w", tagstream.ErrStreamClosed)
	case s.err != nil:
		return "", s.err
	case s.done:
		return "", io.EOF
	}

	for {
		if err := s.ctx.Err(); err != nil {
			s.err = fmt.Errorf("gemini: %w", err)
			return "", s.err
		}
		resp, err, ok := s.pull()
		if !ok {
			s.done = true
			return "", io.EOF
		}
		if err != nil {
			s.err = fmt.Errorf("gemini: %w", err)
			return "", s.err
		}
		if resp == nil {
			continue
		}
		if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && len(resp.Candidates) == 0 {
			s.err = fmt.Errorf("gemini: prompt blocked: %s", fb.BlockReason)
			return "", s.err
		}
		if delta := chunkText(resp); delta != "" {
			return delta, nil
		}
	}
}

// chunkText concatenates the non-thought text parts of the first candidate.
func chunkText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func (s *stream) Close() error {
	if !s.closed {
		s.closed = true
		s.stop()
	}
	return nil
}
