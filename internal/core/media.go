package core

import (
	"context"
	"time"
)

// MediaEventKind identifies an asynchronous notification from a MediaElement.
type MediaEventKind int

const (
	MediaEnded MediaEventKind = iota
	MediaMetadataLoaded
	MediaTimeUpdate
	MediaError
)

// String returns the event kind name.
func (k MediaEventKind) String() string {
	switch k {
	case MediaEnded:
		return "ended"
	case MediaMetadataLoaded:
		return "metadata"
	case MediaTimeUpdate:
		return "timeupdate"
	case MediaError:
		return "error"
	default:
		return "unknown"
	}
}

// MediaEvent is emitted by a MediaElement. Generation identifies the Load call
// the event belongs to so that late events for a replaced source can be dropped.
type MediaEvent struct {
	Kind       MediaEventKind
	Generation uint64
	Position   time.Duration
	Duration   time.Duration
	Err        error
}

// MediaSink receives MediaEvents. Implementations must not block.
type MediaSink func(MediaEvent)

// MediaElement is the native playback collaborator driven by a session.
type MediaElement interface {
	// Load replaces the current source. Metadata arrives later as a
	// MediaMetadataLoaded event.
	Load(ctx context.Context, loc Locator) error
	// Unload drops the current source and silences output.
	Unload()
	Play(ctx context.Context) error
	Pause(ctx context.Context) error

	// Generation returns the generation of the most recent Load.
	Generation() uint64

	CurrentTime() time.Duration
	SetCurrentTime(d time.Duration) error
	// Duration returns the source duration, or false while unknown.
	Duration() (time.Duration, bool)

	// SetVolume sets the output volume (0-100).
	SetVolume(percent int)
}
