package tagstream

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Loop runs conversation turns: it asks a Provider for a stream, decodes it
// with the strategy chosen for the model and publishes the segments into the
// conversation.
type Loop struct {
	provider    Provider
	strategies  StrategyTable
	decoderOpts []DecoderOption
	logger      *slog.Logger
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithStrategyTable sets the per-model strategy selection.
func WithStrategyTable(t StrategyTable) LoopOption {
	return func(l *Loop) { l.strategies = t }
}

// WithDecoderOptions sets options applied to every decoder the loop creates.
func WithDecoderOptions(opts ...DecoderOption) LoopOption {
	return func(l *Loop) { l.decoderOpts = append(l.decoderOpts, opts...) }
}

// WithLogger sets the logger. Default discards.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) { l.logger = logger }
}

// NewLoop creates a new Loop with the given provider.
func NewLoop(provider Provider, opts ...LoopOption) *Loop {
	l := &Loop{provider: provider, logger: discardLogger()}
	for _, o := range opts {
		o(l)
	}
	return l
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	renderer    Renderer
	model       string
	strategy    Strategy
	maxTokens   int
	temperature *float64
}

// WithRenderer sets the renderer that receives segment updates during the
// run. If nil or not set, updates are only applied to the conversation.
func WithRenderer(r Renderer) RunOption {
	return func(c *runConfig) { c.renderer = r }
}

// WithModel sets the model ID for the provider request.
// Empty string means the provider uses its default model.
func WithModel(model string) RunOption {
	return func(c *runConfig) { c.model = model }
}

// WithStrategy overrides the strategy table for this run.
func WithStrategy(s Strategy) RunOption {
	return func(c *runConfig) { c.strategy = s }
}

// WithMaxTokens sets the output token limit for this run.
func WithMaxTokens(n int) RunOption {
	return func(c *runConfig) { c.maxTokens = n }
}

// WithTemperature sets the sampling temperature for this run.
func WithTemperature(t float64) RunOption {
	return func(c *runConfig) { c.temperature = &t }
}

// Run executes one turn. The turn is appended to conv.Turns whether or not
// the stream completes; a stream that fails or is cancelled is recorded as
// TurnAborted and its error is returned.
func (l *Loop) Run(ctx context.Context, conv *Conversation, prompt string, opts ...RunOption) error {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	req := Request{
		Model:        cfg.model,
		SystemPrompt: conv.SystemPrompt,
		Digest:       conv.Digest,
		History:      conv.Turns,
		Prompt:       prompt,
		MaxTokens:    cfg.maxTokens,
		Temperature:  cfg.temperature,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	strategy := cfg.strategy
	if strategy == "" {
		strategy = l.strategies.Lookup(cfg.model)
	}
	dec, err := NewDecoder(strategy, l.decoderOpts...)
	if err != nil {
		return err
	}

	logger := l.logger.With("conversation", conv.ID, "strategy", string(strategy))
	if cfg.model != "" {
		logger = logger.With("model", cfg.model)
	}

	src, err := l.provider.Stream(ctx, req)
	if err != nil {
		return fmt.Errorf("start stream: %w", err)
	}
	defer src.Close()

	turn := Turn{
		Prompt:    prompt,
		Model:     cfg.model,
		Strategy:  strategy,
		Timestamp: time.Now(),
	}
	pub := NewPublisher(conv, &turn, cfg.renderer, logger)

	logger.Debug("stream started")
	streamErr := Decode(ctx, src, dec, pub)

	turn.Status = TurnComplete
	if streamErr != nil {
		turn.Status = TurnAborted
		logger.Warn("stream abandoned", "error", streamErr)
	} else {
		logger.Info("turn complete", "reasoning_bytes", len(turn.Reasoning), "answer_bytes", len(turn.Answer))
	}
	conv.Turns = append(conv.Turns, turn)
	conv.UpdatedAt = time.Now()

	return streamErr
}
