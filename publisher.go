package tagstream

import (
	"log/slog"
	"strings"
)

// Publisher is the Sink that applies decoded events to a turn and its
// conversation and republishes full segment values to a Renderer.
//
// Live segments are appended to the turn and the renderer receives the whole
// updated value, once per event. Title and digest replace the conversation's
// stored value outright. Events are applied strictly in arrival order.
type Publisher struct {
	conv     *Conversation
	turn     *Turn
	renderer Renderer
	logger   *slog.Logger

	reasoning strings.Builder
	answer    strings.Builder
}

var _ Sink = (*Publisher)(nil)

// NewPublisher creates a Publisher for one turn. conv, renderer and logger
// may be nil.
func NewPublisher(conv *Conversation, turn *Turn, renderer Renderer, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = discardLogger()
	}
	p := &Publisher{conv: conv, turn: turn, renderer: renderer, logger: logger}
	if turn != nil {
		p.reasoning.WriteString(turn.Reasoning)
		p.answer.WriteString(turn.Answer)
	}
	return p
}

// OnEvent applies evt and notifies the renderer.
func (p *Publisher) OnEvent(evt Event) {
	var value string
	switch e := evt.(type) {
	case EventReasoningDelta:
		p.reasoning.WriteString(e.Delta)
		value = p.reasoning.String()
		if p.turn != nil {
			p.turn.Reasoning = value
		}
	case EventAnswerDelta:
		p.answer.WriteString(e.Delta)
		value = p.answer.String()
		if p.turn != nil {
			p.turn.Answer = value
		}
	case EventTitleComplete:
		value = e.Title
		if p.conv != nil {
			p.conv.Title = value
		}
		p.logger.Info("title published", "title", value)
	case EventDigestComplete:
		value = e.Digest
		if p.conv != nil {
			p.conv.Digest = value
		}
		p.logger.Info("digest published", "bytes", len(value))
	default:
		return
	}
	p.logger.Debug("segment event", "segment", evt.Segment().String(), "payload_bytes", len(evt.Payload()))
	if p.renderer != nil {
		p.renderer.Render(Update{Segment: evt.Segment(), Value: value})
	}
}

// Reasoning returns the reasoning text published so far.
func (p *Publisher) Reasoning() string { return p.reasoning.String() }

// Answer returns the answer text published so far.
func (p *Publisher) Answer() string { return p.answer.String() }
