package tagstream

// Segment identifies one of the output channels a stream is decoded into.
type Segment int

const (
	SegmentReasoning Segment = iota
	SegmentAnswer
	SegmentTitle
	SegmentDigest
)

func (s Segment) String() string {
	switch s {
	case SegmentReasoning:
		return "reasoning"
	case SegmentAnswer:
		return "answer"
	case SegmentTitle:
		return "title"
	case SegmentDigest:
		return "digest"
	default:
		return "unknown"
	}
}

// Live reports whether the segment is streamed incrementally. Live segments
// grow append-only; the others are published once, whole.
func (s Segment) Live() bool {
	return s == SegmentReasoning || s == SegmentAnswer
}

// Event is a sealed interface representing a decoded segment event.
// Reasoning and answer events carry only newly recognized text. Title and
// digest events carry the complete captured value and fire at most once per
// decoder.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
	Segment() Segment
	Payload() string
}

// EventReasoningDelta carries newly decoded reasoning text.
type EventReasoningDelta struct {
	Delta string
}

func (EventReasoningDelta) event() {}

// Segment returns SegmentReasoning.
func (EventReasoningDelta) Segment() Segment { return SegmentReasoning }

// Payload returns the delta text.
func (e EventReasoningDelta) Payload() string { return e.Delta }

// EventAnswerDelta carries newly decoded answer text.
type EventAnswerDelta struct {
	Delta string
}

func (EventAnswerDelta) event() {}

// Segment returns SegmentAnswer.
func (EventAnswerDelta) Segment() Segment { return SegmentAnswer }

// Payload returns the delta text.
func (e EventAnswerDelta) Payload() string { return e.Delta }

// EventTitleComplete carries a title whose closing tag was observed.
type EventTitleComplete struct {
	Title string
}

func (EventTitleComplete) event() {}

// Segment returns SegmentTitle.
func (EventTitleComplete) Segment() Segment { return SegmentTitle }

// Payload returns the title.
func (e EventTitleComplete) Payload() string { return e.Title }

// EventDigestComplete carries a conversation digest whose closing tag was observed.
type EventDigestComplete struct {
	Digest string
}

func (EventDigestComplete) event() {}

// Segment returns SegmentDigest.
func (EventDigestComplete) Segment() Segment { return SegmentDigest }

// Payload returns the digest.
func (e EventDigestComplete) Payload() string { return e.Digest }

// Interface compliance checks.
var (
	_ Event = EventReasoningDelta{}
	_ Event = EventAnswerDelta{}
	_ Event = EventTitleComplete{}
	_ Event = EventDigestComplete{}
)
