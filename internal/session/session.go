// Package session owns the playlist, shuffle history and playback state of
// one player and drives a media element from user commands and media events.
//
// A Session is not safe for concurrent use. All calls must come from one
// goroutine: the TUI update loop or Loop.Run.
package session

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/cassette/internal/core"
	"github.com/tessro/cassette/internal/playlist"
	"github.com/tessro/cassette/internal/shuffle"
)

// DefaultSeekStep is the fixed skip used by forward and rewind.
const DefaultSeekStep = 15 * time.Second

// DefaultVolume is the initial output volume in percent.
const DefaultVolume = 100

// Session is the single playback session of the process.
type Session struct {
	store   *playlist.Store
	history *shuffle.History
	state   core.PlaybackState
	media   core.MediaElement

	resolver   core.Resolver
	prober     core.Prober
	httpClient *http.Client
	logger     zerolog.Logger

	seekStep time.Duration
	volume   int

	// generation of the media source the session loaded last; media events
	// from other generations are stale.
	generation uint64
	// started is set once the loaded track has played; it separates Loaded
	// from Paused.
	started bool
	// lastErr is the most recent playback failure, cleared on the next load.
	lastErr error
}

// Option configures a Session.
type Option func(*Session)

// WithResolver sets the resolver used for track links.
func WithResolver(r core.Resolver) Option {
	return func(s *Session) {
		s.resolver = r
	}
}

// WithProber sets the prober used to discover local track durations.
func WithProber(p core.Prober) Option {
	return func(s *Session) {
		s.prober = p
	}
}

// WithHTTPClient sets the client used to stream remote tracks.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) {
		s.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger.With().Str("component", "session").Logger()
	}
}

// WithSeekStep sets the forward/rewind step.
func WithSeekStep(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.seekStep = d
		}
	}
}

// WithRand sets the random source for shuffle picks.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		s.history = shuffle.New(rng)
	}
}

// WithVolume sets the initial volume in percent.
func WithVolume(percent int) Option {
	return func(s *Session) {
		s.volume = clampVolume(percent)
	}
}

// New creates an empty session bound to media.
func New(media core.MediaElement, opts ...Option) *Session {
	s := &Session{
		store:    playlist.New(),
		history:  shuffle.New(nil),
		state:    core.NewPlaybackState(),
		media:    media,
		logger:   zerolog.Nop(),
		seekStep: DefaultSeekStep,
		volume:   DefaultVolume,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.media.SetVolume(s.volume)
	return s
}

// State returns a copy of the playback state.
func (s *Session) State() core.PlaybackState {
	return s.state
}

// Status returns the main playback state.
func (s *Session) Status() core.Status {
	switch {
	case !s.state.HasTrack():
		return core.StatusEmpty
	case s.state.IsPlaying:
		return core.StatusPlaying
	case s.started:
		return core.StatusPaused
	default:
		return core.StatusLoaded
	}
}

// Size returns the number of tracks in the playlist.
func (s *Session) Size() int {
	return s.store.Size()
}

// Tracks returns the playlist in order.
func (s *Session) Tracks() []*core.Track {
	return s.store.Tracks()
}

// Current returns the selected track, or nil.
func (s *Session) Current() *core.Track {
	if !s.state.HasTrack() {
		return nil
	}
	t, err := s.store.Get(s.state.CurrentIndex)
	if err != nil {
		return nil
	}
	return t
}

// History returns the visited indices of the current shuffle cycle.
func (s *Session) History() []int {
	return s.history.Entries()
}

// SeekStep returns the forward/rewind step.
func (s *Session) SeekStep() time.Duration {
	return s.seekStep
}

// Volume returns the output volume in percent.
func (s *Session) Volume() int {
	return s.volume
}

// LastError returns the most recent playback failure, if any.
func (s *Session) LastError() error {
	return s.lastErr
}

func clampVolume(percent int) int {
	return min(max(percent, 0), 100)
}
