package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/tessro/cassette/internal/core"
)

// Snapshot is a read-only copy of everything a view renders.
type Snapshot struct {
	Status   core.Status        `json:"status"`
	State    core.PlaybackState `json:"state"`
	Current  *core.Track        `json:"current,omitempty"`
	Entries  []core.Entry       `json:"entries"`
	History  []int              `json:"history"`
	Position time.Duration      `json:"position"`
	Duration time.Duration      `json:"duration"`
	Volume   int                `json:"volume"`
	Title    string             `json:"title"`
	Info     string             `json:"info"`
}

// Entries returns one rendered row per track.
func (s *Session) Entries() []core.Entry {
	return lo.Map(s.store.Tracks(), func(t *core.Track, i int) core.Entry {
		return core.Entry{
			Index:           i,
			DisplayName:     t.Name,
			DisplayDuration: core.FormatDuration(t.Duration),
			IsCurrent:       i == s.state.CurrentIndex,
		}
	})
}

// Title returns the window title.
func (s *Session) Title() string {
	return core.Title(s.Current(), s.state.IsPlaying)
}

// Info returns the position and mode line.
func (s *Session) Info() string {
	return core.InfoLine(s.state, s.store.Size())
}

// Position returns the play position of the loaded track.
func (s *Session) Position() time.Duration {
	if !s.state.HasTrack() {
		return 0
	}
	return s.media.CurrentTime()
}

// Duration returns the duration of the loaded track, 0 while unknown.
func (s *Session) Duration() time.Duration {
	d, _ := s.duration()
	return d
}

// Snapshot captures the session for rendering.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Status:   s.Status(),
		State:    s.state,
		Entries:  s.Entries(),
		History:  s.history.Entries(),
		Position: s.Position(),
		Duration: s.Duration(),
		Volume:   s.volume,
		Title:    s.Title(),
		Info:     s.Info(),
	}
	if t := s.Current(); t != nil {
		current := *t
		snap.Current = &current
	}
	return snap
}

// Listing renders the playlist as numbered lines, marking the current track.
func (s *Session) Listing() string {
	entries := s.Entries()
	if len(entries) == 0 {
		return "Playlist is empty"
	}

	var b strings.Builder
	for _, e := range entries {
		marker := " "
		if e.IsCurrent {
			marker = "▶"
		}
		fmt.Fprintf(&b, "%s %2d. %s  %s\n", marker, e.Index+1, e.DisplayName, e.DisplayDuration)
	}
	return strings.TrimRight(b.String(), "\n")
}

// StatusLine describes the current track, status and position.
func (s *Session) StatusLine() string {
	t := s.Current()
	if t == nil {
		return s.Info()
	}
	return fmt.Sprintf("%s: %s [%s / %s] (%s)",
		s.Status(), t.Name,
		core.FormatDuration(s.Position()), core.FormatDuration(s.Duration()),
		s.Info())
}
