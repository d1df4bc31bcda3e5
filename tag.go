package tagstream

import (
	"fmt"
	"sort"
	"strings"
)

// Tag is one of the closed set of section markers a stream may contain.
type Tag int

const (
	TagReasoning Tag = iota + 1
	TagAnswer
	TagTitle
	TagDigest
)

func (t Tag) String() string {
	switch t {
	case TagReasoning:
		return "reasoning"
	case TagAnswer:
		return "answer"
	case TagTitle:
		return "title"
	case TagDigest:
		return "digest"
	default:
		return "unknown"
	}
}

// State returns the decoder state entered by the tag's opening form.
func (t Tag) State() State {
	switch t {
	case TagReasoning:
		return StateReasoning
	case TagAnswer:
		return StateAnswer
	case TagTitle:
		return StateTitle
	case TagDigest:
		return StateDigest
	default:
		return StateIdle
	}
}

// State is the section a decoder is currently inside, if any.
type State int

const (
	StateIdle State = iota
	StateReasoning
	StateAnswer
	StateTitle
	StateDigest
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReasoning:
		return "in-reasoning"
	case StateAnswer:
		return "in-answer"
	case StateTitle:
		return "in-title"
	case StateDigest:
		return "in-digest"
	default:
		return "unknown"
	}
}

// Captured reports whether content in this state is held back until the
// section's closing tag arrives.
func (s State) Captured() bool {
	return s == StateTitle || s == StateDigest
}

// Vocabulary maps tag names, matched exactly, to the tag they denote.
// The zero value is empty; use DefaultVocabulary.
type Vocabulary map[string]Tag

// DefaultVocabulary returns the canonical tag names.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		"reasoning": TagReasoning,
		"answer":    TagAnswer,
		"title":     TagTitle,
		"digest":    TagDigest,
	}
}

// With returns a copy of v with alias added as another name for tag.
func (v Vocabulary) With(alias string, tag Tag) Vocabulary {
	out := make(Vocabulary, len(v)+1)
	for name, t := range v {
		out[name] = t
	}
	out[alias] = tag
	return out
}

// Lookup returns the tag for name.
func (v Vocabulary) Lookup(name string) (Tag, bool) {
	t, ok := v[name]
	return t, ok
}

// Names returns the vocabulary's names in sorted order.
func (v Vocabulary) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaxTokenLen returns the length in bytes of the longest closing form
// "</name>". A tag token never exceeds it, so it also bounds how much text a
// decoder holds back while waiting for a tag to complete.
func (v Vocabulary) MaxTokenLen() int {
	n := 0
	for name := range v {
		if l := len(name) + 3; l > n {
			n = l
		}
	}
	return n
}

// Validate checks that every name can appear inside a tag token.
func (v Vocabulary) Validate() error {
	if len(v) == 0 {
		return fmt.Errorf("vocabulary is empty: %w", ErrValidation)
	}
	for _, name := range v.Names() {
		if name == "" {
			return fmt.Errorf("tag name must not be empty: %w", ErrValidation)
		}
		if strings.ContainsAny(name, "<>/ \t\r\n") {
			return fmt.Errorf("tag name %q contains a reserved character: %w", name, ErrValidation)
		}
		switch v[name] {
		case TagReasoning, TagAnswer, TagTitle, TagDigest:
		default:
			return fmt.Errorf("tag name %q maps to unknown tag %d: %w", name, v[name], ErrValidation)
		}
	}
	return nil
}

// ParseTag resolves a canonical tag name.
func ParseTag(s string) (Tag, error) {
	t, ok := DefaultVocabulary().Lookup(s)
	if !ok {
		return 0, fmt.Errorf("unknown tag %q: %w", s, ErrValidation)
	}
	return t, nil
}
