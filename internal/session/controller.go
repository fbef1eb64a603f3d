package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tessro/cassette/internal/core"
	cerrors "github.com/tessro/cassette/internal/errors"
)

// LoadTrack selects the track at index and loads it into the media element.
// If a track was playing, the new one starts playing too. While shuffling,
// the index becomes the last history entry.
func (s *Session) LoadTrack(ctx context.Context, index int) error {
	track, err := s.store.Get(index)
	if err != nil {
		return fmt.Errorf("%w: %d", cerrors.ErrInvalidIndex, index)
	}

	wasPlaying := s.state.IsPlaying
	s.state.CurrentIndex = index
	if s.state.IsShuffling {
		s.history.Push(index)
	}
	s.state.IsPlaying = false
	s.started = false
	s.lastErr = nil

	err = s.media.Load(ctx, track.Locator)
	s.generation = s.media.Generation()
	if err != nil {
		s.lastErr = err
		return fmt.Errorf("load %q: %w", track.Name, err)
	}
	s.logger.Debug().Int("index", index).Str("track", track.Name).Msg("loaded")

	if wasPlaying {
		return s.play(ctx)
	}
	return nil
}

// Play starts the selected track, loading the first one if nothing is
// selected. Does nothing on an empty playlist or when already playing.
func (s *Session) Play(ctx context.Context) error {
	if s.store.IsEmpty() || s.state.IsPlaying {
		return nil
	}
	if !s.state.HasTrack() {
		if err := s.LoadTrack(ctx, 0); err != nil {
			return err
		}
	}
	return s.play(ctx)
}

// Pause pauses playback. Does nothing when not playing.
func (s *Session) Pause(ctx context.Context) error {
	if !s.state.IsPlaying {
		return nil
	}
	return s.pause(ctx)
}

// TogglePlay flips between playing and paused, loading the first track if
// nothing is selected. Does nothing on an empty playlist.
func (s *Session) TogglePlay(ctx context.Context) error {
	if s.state.IsPlaying {
		return s.pause(ctx)
	}
	return s.Play(ctx)
}

// PlayIndex loads the track at index and starts it.
func (s *Session) PlayIndex(ctx context.Context, index int) error {
	if err := s.LoadTrack(ctx, index); err != nil {
		return err
	}
	if s.state.IsPlaying {
		return nil
	}
	return s.play(ctx)
}

// OnTrackEnded handles the end of the current track. Repeat replays the
// same track without touching the shuffle history; otherwise the session
// advances.
func (s *Session) OnTrackEnded(ctx context.Context) error {
	if !s.state.HasTrack() {
		return nil
	}
	if s.state.IsRepeating {
		if err := s.media.SetCurrentTime(0); err != nil {
			return fmt.Errorf("rewind: %w", err)
		}
		s.state.IsPlaying = false
		return s.play(ctx)
	}
	return s.AdvanceNext(ctx)
}

// AdvanceNext moves to the next track: a shuffle pick, or the following
// index wrapping to 0.
func (s *Session) AdvanceNext(ctx context.Context) error {
	size := s.store.Size()
	if size == 0 {
		return nil
	}

	var index int
	if s.state.IsShuffling {
		index = s.history.Next(size, s.state.CurrentIndex)
	} else {
		index = (s.state.CurrentIndex + 1) % size
	}
	return s.LoadTrack(ctx, index)
}

// AdvancePrevious moves back: through the shuffle history when it has
// somewhere to go, otherwise to the preceding index wrapping to the end.
func (s *Session) AdvancePrevious(ctx context.Context) error {
	size := s.store.Size()
	if size == 0 {
		return nil
	}

	if s.state.IsShuffling {
		if index, ok := s.history.Previous(); ok {
			return s.LoadTrack(ctx, index)
		}
	}

	index := size - 1
	if s.state.CurrentIndex > 0 {
		index = s.state.CurrentIndex - 1
	}
	return s.LoadTrack(ctx, index)
}

// SeekRelative moves the play position by delta, clamped to
// [0, duration]. With an unknown duration only the lower bound applies.
func (s *Session) SeekRelative(delta time.Duration) error {
	if !s.state.HasTrack() {
		return nil
	}
	pos := max(s.media.CurrentTime()+delta, 0)
	if d, ok := s.duration(); ok {
		pos = min(pos, d)
	}
	return s.media.SetCurrentTime(pos)
}

// Forward skips ahead by the seek step.
func (s *Session) Forward() error {
	return s.SeekRelative(s.seekStep)
}

// Rewind skips back by the seek step.
func (s *Session) Rewind() error {
	return s.SeekRelative(-s.seekStep)
}

// SeekAbsolute moves to a fraction of the duration, clamped to [0, 1].
// Does nothing while the duration is unknown.
func (s *Session) SeekAbsolute(fraction float64) error {
	if !s.state.HasTrack() {
		return nil
	}
	d, ok := s.duration()
	if !ok {
		return nil
	}
	fraction = min(max(fraction, 0), 1)
	return s.media.SetCurrentTime(time.Duration(fraction * float64(d)))
}

// RemoveTrack removes the track at index and renumbers the current index and
// shuffle history with it. Removing the current track selects the track now
// at that position, or the first one if it was last; removing the only track
// empties the session.
func (s *Session) RemoveTrack(ctx context.Context, index int) error {
	if index < 0 || index >= s.store.Size() {
		return fmt.Errorf("%w: %d", cerrors.ErrInvalidIndex, index)
	}

	_, releaseErr := s.store.Remove(index)
	s.history.Remove(index)

	current := s.state.CurrentIndex
	var loadErr error
	switch {
	case s.store.IsEmpty():
		s.reset()
	case index < current:
		s.state.CurrentIndex = current - 1
	case index == current:
		next := index
		if next >= s.store.Size() {
			next = 0
		}
		loadErr = s.LoadTrack(ctx, next)
	}

	if releaseErr != nil {
		s.logger.Warn().Err(releaseErr).Int("index", index).Msg("release failed")
	}
	return errors.Join(releaseErr, loadErr)
}

// SetRepeating turns repeat-one on or off.
func (s *Session) SetRepeating(on bool) {
	s.state.IsRepeating = on
}

// ToggleRepeat flips repeat-one.
func (s *Session) ToggleRepeat() {
	s.SetRepeating(!s.state.IsRepeating)
}

// SetShuffling turns shuffle on or off. Turning it on starts a new cycle at a
// random track and plays it; turning it off only clears the history.
func (s *Session) SetShuffling(ctx context.Context, on bool) error {
	if on == s.state.IsShuffling {
		return nil
	}
	s.state.IsShuffling = on

	if !on {
		s.history.Reset()
		return nil
	}

	seed := s.history.Start(s.store.Size())
	if seed < 0 {
		return nil
	}
	if err := s.LoadTrack(ctx, seed); err != nil {
		return err
	}
	if s.state.IsPlaying {
		return nil
	}
	return s.play(ctx)
}

// ToggleShuffle flips shuffle mode.
func (s *Session) ToggleShuffle(ctx context.Context) error {
	return s.SetShuffling(ctx, !s.state.IsShuffling)
}

// SetVolume sets the output volume in percent, clamped to [0, 100].
func (s *Session) SetVolume(percent int) {
	s.volume = clampVolume(percent)
	s.media.SetVolume(s.volume)
}

// AddTracks appends tracks to the playlist. Adding to a session with nothing
// selected loads the first track, which also seeds the shuffle cycle.
func (s *Session) AddTracks(ctx context.Context, tracks ...*core.Track) error {
	for _, t := range tracks {
		s.store.Add(t)
	}
	if len(tracks) == 0 || s.state.HasTrack() {
		return nil
	}
	s.history.Reset()
	return s.LoadTrack(ctx, 0)
}

// Clear empties the playlist, releasing every track, and stops playback.
// Repeat and shuffle flags are kept.
func (s *Session) Clear() error {
	err := s.store.Clear()
	s.reset()
	return err
}

func (s *Session) reset() {
	s.media.Unload()
	s.generation = s.media.Generation()
	s.history.Reset()
	s.state.CurrentIndex = -1
	s.state.IsPlaying = false
	s.started = false
}

func (s *Session) play(ctx context.Context) error {
	if err := s.media.Play(ctx); err != nil {
		s.lastErr = err
		return fmt.Errorf("play: %w", err)
	}
	s.state.IsPlaying = true
	s.started = true
	return nil
}

func (s *Session) pause(ctx context.Context) error {
	if err := s.media.Pause(ctx); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	s.state.IsPlaying = false
	return nil
}

// duration prefers the media element's value and falls back to the track's.
func (s *Session) duration() (time.Duration, bool) {
	if d, ok := s.media.Duration(); ok && d > 0 {
		return d, true
	}
	if t := s.Current(); t.HasDuration() {
		return t.Duration, true
	}
	return 0, false
}
