package core

import (
	"fmt"
	"strings"
	"time"
)

// AppName is shown in titles.
const AppName = "Music Player"

// Entry is one rendered playlist row.
type Entry struct {
	Index           int    `json:"index"`
	DisplayName     string `json:"display_name"`
	DisplayDuration string `json:"display_duration"`
	IsCurrent       bool   `json:"is_current"`
}

// FormatDuration formats a duration as m:ss, or 0:00 when unknown.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0:00"
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Title returns the window/tab title for the given track and play state.
func Title(track *Track, playing bool) string {
	if track == nil {
		return "🎵 " + AppName
	}
	glyph := "⏸️"
	if playing {
		glyph = "▶️"
	}
	return fmt.Sprintf("%s %s - %s", glyph, track.Name, AppName)
}

// InfoLine describes the playlist position and active modes,
// e.g. "Track 2 of 5 • Repeating • Shuffling".
func InfoLine(state PlaybackState, size int) string {
	if !state.HasTrack() {
		return "Select a song to start playing"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Track %d of %d", state.CurrentIndex+1, size)
	if state.IsRepeating {
		b.WriteString(" • Repeating")
	}
	if state.IsShuffling {
		b.WriteString(" • Shuffling")
	}
	return b.String()
}
