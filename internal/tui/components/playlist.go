package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/cassette/internal/core"
	"github.com/tessro/cassette/internal/tui/styles"
)

// Playlist displays the tracks with a selection cursor
type Playlist struct {
	offset   int
	selected int
}

// NewPlaylist creates a new Playlist component
func NewPlaylist() *Playlist {
	return &Playlist{}
}

// SelectNext moves the cursor down
func (p *Playlist) SelectNext(size int) {
	if p.selected < size-1 {
		p.selected++
	}
}

// SelectPrev moves the cursor up
func (p *Playlist) SelectPrev() {
	if p.selected > 0 {
		p.selected--
	}
}

// Select moves the cursor to i, clamped to the playlist.
func (p *Playlist) Select(i, size int) {
	p.selected = i
	p.Clamp(size)
}

// Clamp keeps the cursor inside a playlist of the given size.
func (p *Playlist) Clamp(size int) {
	if p.selected >= size {
		p.selected = size - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
}

// Selected returns the selected index
func (p *Playlist) Selected() int {
	return p.selected
}

// Render renders the playlist panel
func (p *Playlist) Render(entries []core.Entry, width, height int, focused bool) string {
	title := styles.PanelTitle(fmt.Sprintf("Playlist (%d)", len(entries)), focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("Playlist is empty. Press a to add files or links")
	} else {
		content = p.renderEntries(entries, width-4, height-4, focused)
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

func (p *Playlist) renderEntries(entries []core.Entry, width, maxLines int, focused bool) string {
	p.Clamp(len(entries))

	visibleCount := maxLines - 1 // room for the "more" indicator
	if visibleCount < 1 {
		visibleCount = 1
	}

	// Keep the cursor in view.
	if p.selected < p.offset {
		p.offset = p.selected
	}
	if p.selected >= p.offset+visibleCount {
		p.offset = p.selected - visibleCount + 1
	}
	if p.offset > len(entries)-1 {
		p.offset = 0
	}

	start := p.offset
	end := start + visibleCount
	if end > len(entries) {
		end = len(entries)
	}

	lines := make([]string, 0, end-start+1)

	// "XX. " (4) + marker (2) + " " before the duration (1) + duration (5)
	const overhead = 12

	for i := start; i < end; i++ {
		e := entries[i]

		num := fmt.Sprintf("%2d.", e.Index+1)
		name := styles.Truncate(e.DisplayName, width-overhead)
		pad := width - overhead - styles.Width(name)
		if pad < 0 {
			pad = 0
		}
		duration := styles.PadLeft(e.DisplayDuration, 5)

		var line string
		if e.IsCurrent {
			line = styles.Playing.Render(fmt.Sprintf("%s ▶ %s%*s %s", num, name, pad, "", duration))
		} else {
			line = fmt.Sprintf("%s   %s%*s %s",
				styles.Dim.Render(num),
				name, pad, "",
				styles.Muted.Render(duration))
		}
		if focused && i == p.selected {
			line = styles.Selected.Render(line)
		}

		lines = append(lines, line)
	}

	if end < len(entries) {
		more := styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(entries)-end))
		lines = append(lines, more)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
