package bubbletea

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// Header exports header for testing.
func Header(m Model) string {
	return m.header()
}

// HasUnclosedFence exports hasUnclosedFence for testing.
var HasUnclosedFence = hasUnclosedFence
