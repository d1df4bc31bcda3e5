package tagstream

// automaton is the incremental decoder. It keeps a residual buffer holding
// the tail of the input that may still be the start of a tag; everything
// else is classified as soon as it arrives.
type automaton struct {
	m        *machine
	residual string
	done     bool
}

var _ Decoder = (*automaton)(nil)

func newAutomaton(cfg decoderConfig) *automaton {
	return &automaton{m: newMachine(cfg)}
}

func (a *automaton) Feed(delta string) []Event {
	if delta == "" || a.done {
		return nil
	}
	toks, rest := lex(a.residual+delta, a.m.limit, false)
	a.residual = rest
	var out []Event
	for _, tok := range toks {
		out = a.m.step(tok, out)
	}
	return out
}

// Finalize flushes the residual buffer as plain content under the current
// state. An unclosed title or digest is dropped.
func (a *automaton) Finalize() []Event {
	if a.done {
		return nil
	}
	a.done = true
	toks, _ := lex(a.residual, a.m.limit, true)
	a.residual = ""
	var out []Event
	for _, tok := range toks {
		out = a.m.step(tok, out)
	}
	if a.m.state.Captured() {
		a.m.abandon()
	}
	return out
}
