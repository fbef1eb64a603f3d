// Package playlist holds the ordered collection of tracks a session plays.
package playlist

import (
	"errors"
	"fmt"

	"github.com/tessro/cassette/internal/core"
)

// ErrOutOfRange is returned for indices outside [0, Size()).
var ErrOutOfRange = errors.New("playlist index out of range")

// Store is an ordered, densely indexed list of tracks. Insertion order is
// playback order when shuffle is off.
//
// Store does not know about anything that holds indices into it; callers
// that keep a current index or a shuffle history must adjust those
// themselves after Remove.
type Store struct {
	tracks []*core.Track
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Add appends a track and returns its index.
func (s *Store) Add(t *core.Track) int {
	s.tracks = append(s.tracks, t)
	return len(s.tracks) - 1
}

// Remove deletes the track at index, releases its locator, and returns the
// renumbered list. Tracks after index move down by one.
func (s *Store) Remove(index int) ([]*core.Track, error) {
	if !s.valid(index) {
		return nil, fmt.Errorf("%w: %d (size %d)", ErrOutOfRange, index, len(s.tracks))
	}

	removed := s.tracks[index]
	s.tracks = append(s.tracks[:index], s.tracks[index+1:]...)

	// The slot is gone either way; a failed release is reported but does not
	// put the track back.
	if err := removed.Release(); err != nil {
		return s.Tracks(), fmt.Errorf("release %q: %w", removed.Name, err)
	}
	return s.Tracks(), nil
}

// Get returns the track at index.
func (s *Store) Get(index int) (*core.Track, error) {
	if !s.valid(index) {
		return nil, fmt.Errorf("%w: %d (size %d)", ErrOutOfRange, index, len(s.tracks))
	}
	return s.tracks[index], nil
}

// Size returns the number of tracks.
func (s *Store) Size() int {
	return len(s.tracks)
}

// IsEmpty returns true if the store has no tracks.
func (s *Store) IsEmpty() bool {
	return len(s.tracks) == 0
}

// Clear releases every track and empties the store. Every release is
// attempted; failures are joined.
func (s *Store) Clear() error {
	var errs []error
	for _, t := range s.tracks {
		if err := t.Release(); err != nil {
			errs = append(errs, fmt.Errorf("release %q: %w", t.Name, err))
		}
	}
	s.tracks = nil
	return errors.Join(errs...)
}

// Tracks returns a copy of the ordered track list.
func (s *Store) Tracks() []*core.Track {
	out := make([]*core.Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

// IndexOf returns the index of t, or -1 if it is not in the store.
func (s *Store) IndexOf(t *core.Track) int {
	for i, candidate := range s.tracks {
		if candidate == t {
			return i
		}
	}
	return -1
}

func (s *Store) valid(index int) bool {
	return index >= 0 && index < len(s.tracks)
}
