package core

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Source indicates where a track's audio comes from.
type Source string

const (
	SourceLocal   Source = "local"
	SourceSpotify Source = "spotify"
)

// Locator is an opaque reference to a track's audio data. Local locators hold
// transient resources and must be released when the track leaves the playlist.
type Locator interface {
	// URI identifies the audio data (a file path or a remote URL).
	URI() string
	// Open returns a reader over the raw, encoded audio.
	Open(ctx context.Context) (io.ReadCloser, error)
	// Release frees any resources held by the locator. It is safe to call
	// more than once.
	Release() error
}

// Track represents a playable audio track.
type Track struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Artist   string        `json:"artist,omitempty"`
	Locator  Locator       `json:"-"`
	Duration time.Duration `json:"duration"`
	Source   Source        `json:"source"`
}

// NewTrack creates a track with a fresh identifier.
func NewTrack(name string, loc Locator, source Source) *Track {
	return &Track{
		ID:      uuid.NewString(),
		Name:    name,
		Locator: loc,
		Source:  source,
	}
}

// IsRemote returns true if the track streams from a remote URL.
func (t *Track) IsRemote() bool {
	return t != nil && t.Source != SourceLocal
}

// HasDuration returns true once the track's duration is known.
func (t *Track) HasDuration() bool {
	return t != nil && t.Duration > 0
}

// SetDuration records the track's duration. Completions that arrive after the
// track was removed land here harmlessly.
func (t *Track) SetDuration(d time.Duration) {
	if t == nil || d <= 0 {
		return
	}
	t.Duration = d
}

// Release frees the track's locator, if any.
func (t *Track) Release() error {
	if t == nil || t.Locator == nil {
		return nil
	}
	return t.Locator.Release()
}

// ResolvedTrack is the metadata a Resolver returns for a track link.
type ResolvedTrack struct {
	URL      string        `json:"url"`
	Name     string        `json:"name"`
	Artist   string        `json:"artist"`
	Duration time.Duration `json:"duration"`
}

// Resolver turns a shared track link into playable track metadata.
type Resolver interface {
	Resolve(ctx context.Context, link string) (*ResolvedTrack, error)
}

// Prober discovers the duration of a track's audio.
type Prober interface {
	Probe(ctx context.Context, loc Locator) (time.Duration, error)
}
