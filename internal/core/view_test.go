package core

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"unknown", 0, "0:00"},
		{"negative", -time.Second, "0:00"},
		{"seconds", 7 * time.Second, "0:07"},
		{"minutes", 3*time.Minute + 25*time.Second, "3:25"},
		{"truncates fraction", 61*time.Second + 900*time.Millisecond, "1:01"},
		{"over an hour", 75 * time.Minute, "75:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.d); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	track := &Track{Name: "Song"}

	if got := Title(nil, false); got != "🎵 Music Player" {
		t.Errorf("Title(nil) = %q", got)
	}
	if got := Title(track, true); got != "▶️ Song - Music Player" {
		t.Errorf("Title(playing) = %q", got)
	}
	if got := Title(track, false); got != "⏸️ Song - Music Player" {
		t.Errorf("Title(paused) = %q", got)
	}
}

func TestInfoLine(t *testing.T) {
	state := PlaybackState{CurrentIndex: 1, IsRepeating: true, IsShuffling: true}
	if got := InfoLine(state, 5); got != "Track 2 of 5 • Repeating • Shuffling" {
		t.Errorf("InfoLine() = %q", got)
	}

	state = PlaybackState{CurrentIndex: 0}
	if got := InfoLine(state, 1); got != "Track 1 of 1" {
		t.Errorf("InfoLine() = %q", got)
	}

	if got := InfoLine(NewPlaybackState(), 0); got != "Select a song to start playing" {
		t.Errorf("InfoLine(idle) = %q", got)
	}
}

func TestTrackDuration(t *testing.T) {
	track := NewTrack("a", nil, SourceLocal)
	if track.ID == "" {
		t.Error("NewTrack() should assign an ID")
	}
	if track.HasDuration() {
		t.Error("HasDuration() = true for new track")
	}

	track.SetDuration(-time.Second)
	if track.HasDuration() {
		t.Error("negative duration should be ignored")
	}

	track.SetDuration(90 * time.Second)
	if track.Duration != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", track.Duration)
	}
	if track.IsRemote() {
		t.Error("local track reported remote")
	}
	if err := track.Release(); err != nil {
		t.Errorf("Release() with nil locator error = %v", err)
	}
}

func TestStatusString(t *testing.T) {
	if StatusPaused.String() != "paused" || StatusEmpty.String() != "empty" {
		t.Error("unexpected status names")
	}
	if Status(42).String() != "unknown" {
		t.Error("out-of-range status should be unknown")
	}
}
