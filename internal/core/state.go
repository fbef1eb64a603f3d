package core

// Status is the main playback state of a session.
type Status int

const (
	StatusEmpty Status = iota
	StatusLoaded
	StatusPlaying
	StatusPaused
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusLoaded:
		return "loaded"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PlaybackState is the mutable playback state of a session.
// CurrentIndex is -1 when no track is selected.
type PlaybackState struct {
	CurrentIndex int  `json:"current_index"`
	IsPlaying    bool `json:"is_playing"`
	IsRepeating  bool `json:"is_repeating"`
	IsShuffling  bool `json:"is_shuffling"`
}

// NewPlaybackState returns the state of a fresh session.
func NewPlaybackState() PlaybackState {
	return PlaybackState{CurrentIndex: -1}
}

// HasTrack returns true if a track is selected.
func (s PlaybackState) HasTrack() bool {
	return s.CurrentIndex >= 0
}
