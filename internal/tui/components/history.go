package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/cassette/internal/core"
	"github.com/tessro/cassette/internal/tui/styles"
)

// History displays the tracks visited in the current shuffle cycle, most
// recent first.
type History struct {
	offset int
}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// ScrollDown scrolls the history down
func (h *History) ScrollDown() {
	h.offset++
}

// ScrollUp scrolls the history up
func (h *History) ScrollUp() {
	if h.offset > 0 {
		h.offset--
	}
}

// Render renders the history panel
func (h *History) Render(history []int, entries []core.Entry, shuffling bool, width, height int, focused bool) string {
	title := styles.PanelTitle(fmt.Sprintf("Shuffle History %d/%d", len(history), len(entries)), focused)

	var content string
	switch {
	case !shuffling:
		content = styles.Muted.Render("Shuffle is off")
	case len(history) == 0:
		content = styles.Muted.Render("No history yet")
	default:
		content = h.renderHistory(history, entries, width-4, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (h *History) renderHistory(history []int, entries []core.Entry, width, maxLines int) string {
	if h.offset >= len(history) {
		h.offset = len(history) - 1
	}

	lines := make([]string, 0, maxLines)

	// "XX. " (4) + icon (2)
	const overhead = 6

	for pos := len(history) - 1 - h.offset; pos >= 0; pos-- {
		if len(lines) >= maxLines {
			break
		}
		idx := history[pos]
		if idx < 0 || idx >= len(entries) {
			continue
		}
		e := entries[idx]

		icon := "✓ "
		if e.IsCurrent {
			icon = "▶ "
		}
		name := styles.Truncate(e.DisplayName, width-overhead)
		line := fmt.Sprintf("%s %s%s", styles.Dim.Render(fmt.Sprintf("%2d.", pos+1)), icon, name)
		if e.IsCurrent {
			line = styles.Playing.Render(line)
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
