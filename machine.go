package tagstream

import "strings"

// machine applies tokens to the decoder state and produces events. Both
// decoder strategies drive one; they differ only in how they feed it.
type machine struct {
	vocab      Vocabulary
	limit      int
	forceClose bool

	state   State
	capture strings.Builder
	fired   map[State]bool // captured sections already published
}

func newMachine(cfg decoderConfig) *machine {
	return &machine{
		vocab:      cfg.vocab,
		limit:      cfg.vocab.MaxTokenLen(),
		forceClose: cfg.forceClose,
		fired:      make(map[State]bool, 2),
	}
}

// step applies one token, appending any resulting events to out.
func (m *machine) step(tok token, out []Event) []Event {
	if tok.kind == tokenText {
		return m.content(tok.text, out)
	}

	tag, ok := m.vocab.Lookup(tok.name)
	if !ok {
		return out
	}
	target := tag.State()

	if tok.closing {
		if target != m.state {
			return out
		}
		return m.close(out)
	}

	if target != m.state && m.state.Captured() && m.forceClose {
		out = m.close(out)
	}
	if target.Captured() {
		m.capture.Reset()
	}
	m.state = target
	return out
}

// content classifies plain text under the current state.
func (m *machine) content(text string, out []Event) []Event {
	if text == "" {
		return out
	}
	switch m.state {
	case StateReasoning:
		out = append(out, EventReasoningDelta{Delta: text})
	case StateAnswer:
		out = append(out, EventAnswerDelta{Delta: text})
	case StateTitle, StateDigest:
		m.capture.WriteString(text)
	}
	return out
}

// close ends the active section. A captured section is published only the
// first time a section of its kind closes.
func (m *machine) close(out []Event) []Event {
	switch m.state {
	case StateTitle:
		if !m.fired[StateTitle] {
			out = append(out, EventTitleComplete{Title: m.capture.String()})
			m.fired[StateTitle] = true
		}
	case StateDigest:
		if !m.fired[StateDigest] {
			out = append(out, EventDigestComplete{Digest: m.capture.String()})
			m.fired[StateDigest] = true
		}
	}
	m.capture.Reset()
	m.state = StateIdle
	return out
}

// abandon drops an unclosed captured section at end of stream.
func (m *machine) abandon() {
	m.capture.Reset()
}
