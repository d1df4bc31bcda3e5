package tagstream

import (
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Decoder turns raw text deltas into segment events. Feed is called once per
// delta in arrival order; Finalize is called once when the stream ends
// cleanly. A stream abandoned before Finalize simply drops the decoder.
//
// A Decoder is owned by a single stream and is not safe for concurrent use.
type Decoder interface {
	Feed(delta string) []Event
	Finalize() []Event
}

// Strategy names a decoder implementation.
type Strategy string

const (
	// StrategyIncremental classifies text as it arrives, holding back only
	// what might still be the start of a tag.
	StrategyIncremental Strategy = "incremental"

	// StrategyReparse re-parses all text received so far on every delta and
	// emits only what is new. It costs O(total length) per delta and keeps
	// no parse state between calls.
	StrategyReparse Strategy = "reparse"
)

var strategies = map[Strategy]func(decoderConfig) Decoder{
	StrategyIncremental: func(cfg decoderConfig) Decoder { return newAutomaton(cfg) },
	StrategyReparse:     func(cfg decoderConfig) Decoder { return newReparser(cfg) },
}

// Strategies returns the registered strategy names in sorted order.
func Strategies() []Strategy {
	out := make([]Strategy, 0, len(strategies))
	for s := range strategies {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseStrategy resolves a strategy name. The empty string selects
// StrategyIncremental.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return StrategyIncremental, nil
	}
	st := Strategy(s)
	if _, ok := strategies[st]; !ok {
		return "", fmt.Errorf("%q: %w", s, ErrUnknownStrategy)
	}
	return st, nil
}

// DecoderOption configures a decoder at construction time.
type DecoderOption func(*decoderConfig)

type decoderConfig struct {
	vocab      Vocabulary
	forceClose bool
}

// WithVocabulary sets the tag names the decoder recognizes.
// Default is DefaultVocabulary().
func WithVocabulary(v Vocabulary) DecoderOption {
	return func(c *decoderConfig) { c.vocab = v }
}

// WithForceClose makes an opening tag for a different section close an open
// title or digest section first, publishing what it captured. Without it the
// open section is abandoned silently.
func WithForceClose() DecoderOption {
	return func(c *decoderConfig) { c.forceClose = true }
}

// NewDecoder creates a decoder for one stream using the named strategy.
func NewDecoder(s Strategy, opts ...DecoderOption) (Decoder, error) {
	if s == "" {
		s = StrategyIncremental
	}
	build, ok := strategies[s]
	if !ok {
		return nil, fmt.Errorf("%q: %w", s, ErrUnknownStrategy)
	}
	cfg := decoderConfig{vocab: DefaultVocabulary()}
	for _, o := range opts {
		o(&cfg)
	}
	if err := cfg.vocab.Validate(); err != nil {
		return nil, err
	}
	return build(cfg), nil
}

// StrategyRule selects a strategy for matching model identifiers. Model is a
// glob pattern: "*" does not cross "/", "**" does, and "{a,b}" and "[...]"
// work as in shell globs. A pattern without metacharacters matches exactly.
type StrategyRule struct {
	Model    string
	Strategy Strategy
}

func (r StrategyRule) matches(model string) bool {
	ok, err := doublestar.Match(r.Model, model)
	return err == nil && ok
}

// StrategyTable picks a strategy per model. The first matching rule wins;
// otherwise Default applies.
type StrategyTable struct {
	Default Strategy
	Rules   []StrategyRule
}

// Lookup returns the strategy for model.
func (t StrategyTable) Lookup(model string) Strategy {
	for _, r := range t.Rules {
		if r.matches(model) {
			return r.Strategy
		}
	}
	if t.Default == "" {
		return StrategyIncremental
	}
	return t.Default
}

// Validate checks that every strategy in the table is registered.
func (t StrategyTable) Validate() error {
	if t.Default != "" {
		if _, ok := strategies[t.Default]; !ok {
			return fmt.Errorf("default strategy %q: %w", t.Default, ErrUnknownStrategy)
		}
	}
	for i, r := range t.Rules {
		if r.Model == "" {
			return fmt.Errorf("strategy rule %d: model must not be empty: %w", i, ErrValidation)
		}
		if !doublestar.ValidatePattern(r.Model) {
			return fmt.Errorf("strategy rule %d: invalid model pattern %q: %w", i, r.Model, ErrValidation)
		}
		if _, ok := strategies[r.Strategy]; !ok {
			return fmt.Errorf("strategy rule %d (%s): %q: %w", i, r.Model, r.Strategy, ErrUnknownStrategy)
		}
	}
	return nil
}
