package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/cassette/internal/core"
	"github.com/tessro/cassette/internal/session"
	"github.com/tessro/cassette/internal/tui/styles"
)

// NowPlaying displays the loaded track
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(snap session.Snapshot, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if snap.Current == nil {
		content = lipgloss.JoinVertical(lipgloss.Left,
			styles.Muted.Render(snap.Info),
			"",
			n.renderModes(snap),
		)
	} else {
		content = n.renderTrack(snap, width-4)
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

func (n *NowPlaying) renderTrack(snap session.Snapshot, width int) string {
	track := snap.Current

	icon := styles.StatusIcon(snap.State.IsPlaying)
	name := styles.Title.Render(styles.Truncate(track.Name, width-2))

	source := "Local file"
	if track.IsRemote() {
		source = "Spotify preview"
		if track.Artist != "" {
			source += " • " + track.Artist
		}
	}

	// Times on either side take 12 cells.
	progressWidth := width - 12
	if progressWidth < 10 {
		progressWidth = 10
	}
	var percent float64
	if snap.Duration > 0 {
		percent = float64(snap.Position) / float64(snap.Duration) * 100
	}
	progress := fmt.Sprintf("%s %s %s",
		styles.PadLeft(core.FormatDuration(snap.Position), 5),
		styles.ProgressBar(percent, progressWidth),
		core.FormatDuration(snap.Duration))

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+name,
		"  "+styles.Subtitle.Render(styles.Truncate(source, width-2)),
		"",
		progress,
		"",
		styles.Muted.Render(styles.Truncate(snap.Info, width)),
		n.renderModes(snap),
	)
}

func (n *NowPlaying) renderModes(snap session.Snapshot) string {
	return fmt.Sprintf("%s  %s  %s",
		styles.Flag("🔁 repeat", snap.State.IsRepeating),
		styles.Flag("🔀 shuffle", snap.State.IsShuffling),
		styles.Dim.Render(fmt.Sprintf("🔊 %d%%", snap.Volume)))
}
