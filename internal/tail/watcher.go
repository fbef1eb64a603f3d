// Package tail turns successive session snapshots into printable events.
package tail

import (
	"time"

	"github.com/tessro/cassette/internal/session"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackSkip
	EventPause
	EventResume
	EventVolumeChange
	EventRepeatChange
	EventShuffleChange
	EventPlaylistChange
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *session.Snapshot
	Current   *session.Snapshot
}

// Watcher diffs consecutive snapshots of a session.
type Watcher struct {
	prev *session.Snapshot
	now  func() time.Time
}

// NewWatcher creates a watcher that has seen nothing yet.
func NewWatcher() *Watcher {
	return &Watcher{now: time.Now}
}

// Observe records snap and returns what changed since the last call.
func (w *Watcher) Observe(snap session.Snapshot) []Event {
	curr := &snap
	events := diffSnapshots(w.prev, curr, w.now())
	w.prev = curr
	return events
}

// diffSnapshots compares two snapshots and returns detected events.
func diffSnapshots(prev, curr *session.Snapshot, now time.Time) []Event {
	if curr == nil {
		return nil
	}

	var events []Event
	add := func(t EventType) {
		events = append(events, Event{Type: t, Timestamp: now, Previous: prev, Current: curr})
	}

	// First observation
	if prev == nil {
		if curr.Current != nil {
			add(EventTrackChange)
		}
		return events
	}

	if len(prev.Entries) != len(curr.Entries) {
		add(EventPlaylistChange)
	}

	if trackChanged(prev, curr) {
		switch {
		case prev.Current != nil && wasCompleted(prev):
			add(EventTrackComplete)
		case prev.Current != nil:
			add(EventTrackSkip)
		default:
			add(EventTrackChange)
		}
	}

	if prev.State.IsPlaying && !curr.State.IsPlaying {
		add(EventPause)
	} else if !prev.State.IsPlaying && curr.State.IsPlaying {
		add(EventResume)
	}

	if prev.State.IsRepeating != curr.State.IsRepeating {
		add(EventRepeatChange)
	}
	if prev.State.IsShuffling != curr.State.IsShuffling {
		add(EventShuffleChange)
	}
	if prev.Volume != curr.Volume {
		add(EventVolumeChange)
	}

	return events
}

// trackChanged returns true if a different track is selected. Replaying the
// same track after a repeat is not a change.
func trackChanged(prev, curr *session.Snapshot) bool {
	if prev.Current == nil && curr.Current == nil {
		return false
	}
	if prev.Current == nil || curr.Current == nil {
		return true
	}
	return prev.Current.ID != curr.Current.ID
}

// wasCompleted returns true if the track likely ended on its own.
func wasCompleted(snap *session.Snapshot) bool {
	if snap.Duration <= 0 {
		return false
	}
	threshold := float64(snap.Duration) * 0.95
	return float64(snap.Position) >= threshold
}
