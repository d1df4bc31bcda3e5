package tagstream

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	UserMsg   int // User prompt accent
	Reasoning int // Reasoning segment text
	Title     int // Conversation title
	Digest    int // Conversation digest
	Error     int // Error messages
	Muted     int // Status bar, placeholders
	Accent    int // Headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:   4,
		Reasoning: 8,
		Title:     5,
		Digest:    6,
		Error:     1,
		Muted:     8,
		Accent:    5,
	}
}
