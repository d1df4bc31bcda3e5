package tagstream

import "strings"

// reparser is the full re-parse decoder. It keeps only the raw text and how
// much of each segment it has already emitted. Every delta re-parses the
// whole text from the start with a fresh machine and emits the part of the
// result that lies beyond what was sent before.
type reparser struct {
	cfg  decoderConfig
	raw  strings.Builder
	sent map[Segment]int // bytes emitted per live segment
	once map[Segment]bool
	done bool
}

var _ Decoder = (*reparser)(nil)

func newReparser(cfg decoderConfig) *reparser {
	return &reparser{
		cfg:  cfg,
		sent: make(map[Segment]int, 2),
		once: make(map[Segment]bool, 2),
	}
}

func (r *reparser) Feed(delta string) []Event {
	if delta == "" || r.done {
		return nil
	}
	r.raw.WriteString(delta)
	return r.emit(r.parse(false))
}

func (r *reparser) Finalize() []Event {
	if r.done {
		return nil
	}
	r.done = true
	return r.emit(r.parse(true))
}

// parse decodes the full text. Unclosed captured sections never produce an
// event, so nothing extra is needed to drop them at end of stream.
func (r *reparser) parse(final bool) []Event {
	m := newMachine(r.cfg)
	toks, _ := lex(r.raw.String(), m.limit, final)
	var all []Event
	for _, tok := range toks {
		all = m.step(tok, all)
	}
	return all
}

// emit walks the full event list in order and returns what has not been
// sent yet, trimming live events to their unsent suffix.
func (r *reparser) emit(all []Event) []Event {
	var out []Event
	seen := make(map[Segment]int, 2)
	for _, evt := range all {
		seg := evt.Segment()
		if !seg.Live() {
			if !r.once[seg] {
				r.once[seg] = true
				out = append(out, evt)
			}
			continue
		}
		payload := evt.Payload()
		start, end := seen[seg], seen[seg]+len(payload)
		seen[seg] = end
		if end <= r.sent[seg] {
			continue
		}
		if skip := r.sent[seg] - start; skip > 0 {
			payload = payload[skip:]
		}
		r.sent[seg] = end
		switch seg {
		case SegmentReasoning:
			out = append(out, EventReasoningDelta{Delta: payload})
		case SegmentAnswer:
			out = append(out, EventAnswerDelta{Delta: payload})
		}
	}
	return out
}
