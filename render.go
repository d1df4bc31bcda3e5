package tagstream

// Update is the full current value of one segment. Renderers replace what
// they display for the segment with Value; they never apply deltas.
type Update struct {
	Segment Segment
	Value   string
}

// Renderer displays segment values as they change.
type Renderer interface {
	Render(Update)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(Update)

// Render calls f(u).
func (f RendererFunc) Render(u Update) { f(u) }

// Sink consumes decoded events in the order a decoder produced them.
type Sink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// OnEvent calls f(evt).
func (f SinkFunc) OnEvent(evt Event) { f(evt) }
