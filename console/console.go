// Package console renders segment updates to a plain terminal or any
// io.Writer.
//
// Renderers receive the full value of a segment on every update. The console
// can only append, so it remembers how much of each live segment it has
// already written and prints the grown suffix. A section header is printed
// whenever output switches between reasoning and answer.
package console

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/tagstream"
	"github.com/muesli/termenv"
)

var _ tagstream.Renderer = (*Renderer)(nil)

// Renderer writes segment updates to w.
type Renderer struct {
	w       io.Writer
	headers bool

	reasoning lipgloss.Style
	label     lipgloss.Style
	title     lipgloss.Style
	digest    lipgloss.Style
	muted     lipgloss.Style

	written map[tagstream.Segment]string
	current tagstream.Segment
	started bool
	midLine bool
	err     error
}

// Option configures a Renderer.
type Option func(*options)

type options struct {
	profile    termenv.Profile
	hasProfile bool
	headers    bool
}

// WithProfile forces a color profile instead of detecting one from w.
// termenv.Ascii disables styling.
func WithProfile(p termenv.Profile) Option {
	return func(o *options) {
		o.profile = p
		o.hasProfile = true
	}
}

// WithHeaders toggles the section headers printed between reasoning and
// answer output. Default on.
func WithHeaders(on bool) Option {
	return func(o *options) { o.headers = on }
}

// New creates a Renderer writing to w with colors from theme.
func New(w io.Writer, theme tagstream.Theme, opts ...Option) *Renderer {
	o := options{headers: true}
	for _, opt := range opts {
		opt(&o)
	}
	lr := lipgloss.NewRenderer(w)
	if o.hasProfile {
		lr.SetColorProfile(o.profile)
	}
	return &Renderer{
		w:         w,
		headers:   o.headers,
		reasoning: lr.NewStyle().Foreground(ansiColor(theme.Reasoning)).Faint(true),
		label:     lr.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		title:     lr.NewStyle().Foreground(ansiColor(theme.Title)).Bold(true),
		digest:    lr.NewStyle().Foreground(ansiColor(theme.Digest)).Italic(true),
		muted:     lr.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		written:   make(map[tagstream.Segment]string),
	}
}

// Render implements tagstream.Renderer.
func (r *Renderer) Render(u tagstream.Update) {
	switch u.Segment {
	case tagstream.SegmentReasoning:
		r.renderLive(u, &r.reasoning, "Reasoning")
	case tagstream.SegmentAnswer:
		r.renderLive(u, nil, "Answer")
	case tagstream.SegmentTitle:
		r.renderLine(r.muted.Render("Title: ") + r.title.Render(u.Value))
	case tagstream.SegmentDigest:
		r.renderLine(r.muted.Render("Digest: ") + r.digest.Render(oneLine(u.Value)))
	}
}

// Reset forgets what has been written so the next turn starts fresh.
func (r *Renderer) Reset() {
	r.Flush()
	clear(r.written)
	r.started = false
}

// Flush terminates a partially written line.
func (r *Renderer) Flush() {
	if r.midLine {
		r.write("\n")
	}
}

// Err returns the first write error, if any.
func (r *Renderer) Err() error { return r.err }

// renderLive writes the part of u.Value not yet written. A value that does
// not extend the previous one is written in full.
func (r *Renderer) renderLive(u tagstream.Update, style *lipgloss.Style, label string) {
	suffix, ok := strings.CutPrefix(u.Value, r.written[u.Segment])
	if !ok {
		suffix = u.Value
	}
	r.written[u.Segment] = u.Value
	if suffix == "" {
		return
	}
	if !r.started || r.current != u.Segment {
		if r.headers {
			if r.started {
				r.Flush()
				r.write("\n")
			}
			r.write(r.label.Render(label) + "\n")
			r.midLine = false
		} else {
			r.Flush()
		}
		r.current = u.Segment
		r.started = true
	}
	if style != nil {
		r.write(styleLines(*style, suffix))
	} else {
		r.write(suffix)
	}
	r.midLine = !strings.HasSuffix(suffix, "\n")
}

func (r *Renderer) renderLine(line string) {
	r.Flush()
	r.write(line + "\n")
	r.midLine = false
}

func (r *Renderer) write(s string) {
	if r.err != nil {
		return
	}
	_, r.err = io.WriteString(r.w, s)
}

// styleLines styles each line separately so that lipgloss does not pad
// short lines to the width of the longest.
func styleLines(style lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
