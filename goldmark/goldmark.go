// Package goldmark renders answer markdown to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
//
// Answers are rendered repeatedly while they stream in, so the input is
// often an unfinished document. Render closes a dangling code fence before
// parsing so a half-received code block keeps its code styling instead of
// flickering into paragraph text.
package goldmark

import (
	"strings"

	"github.com/fwojciec/tagstream"
)

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow.
func Render(source string, width int, theme tagstream.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)
	return r.render([]byte(closeOpenFence(source)), width)
}

// closeOpenFence appends a closing fence when source ends inside a fenced
// code block.
func closeOpenFence(source string) string {
	var open string
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		if len(line)-len(trimmed) > 3 {
			continue
		}
		marker := fenceMarker(trimmed)
		if marker == "" {
			continue
		}
		switch {
		case open == "":
			open = marker
		case strings.HasPrefix(marker, open[:1]) && len(marker) >= len(open) && strings.TrimSpace(trimmed[len(marker):]) == "":
			open = ""
		}
	}
	if open == "" {
		return source
	}
	if !strings.HasSuffix(source, "\n") {
		source += "\n"
	}
	return source + open
}

// fenceMarker returns the run of at least three backticks or tildes that
// starts line, or "".
func fenceMarker(line string) string {
	if line == "" || (line[0] != '`' && line[0] != '~') {
		return ""
	}
	n := 0
	for n < len(line) && line[n] == line[0] {
		n++
	}
	if n < 3 {
		return ""
	}
	return line[:n]
}
