package session

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/cassette/internal/core"
	cerrors "github.com/tessro/cassette/internal/errors"
)

func newTestSession(t *testing.T, names ...string) (*Session, *fakeMedia, []*fakeLocator) {
	t.Helper()
	media := &fakeMedia{}
	s := New(media, WithRand(rand.New(rand.NewSource(7))))
	tracks, locators := newTracks(names...)
	require.NoError(t, s.AddTracks(context.Background(), tracks...))
	return s, media, locators
}

func currentName(s *Session) string {
	if t := s.Current(); t != nil {
		return t.Name
	}
	return ""
}

func TestAddTracksLoadsFirstTrack(t *testing.T) {
	s, media, _ := newTestSession(t, "A", "B")

	assert.Equal(t, 0, s.State().CurrentIndex)
	assert.Equal(t, core.StatusLoaded, s.Status())
	assert.False(t, s.State().IsPlaying)
	assert.Equal(t, []string{"load:A"}, media.calls)

	more, _ := newTracks("C")
	require.NoError(t, s.AddTracks(context.Background(), more...))
	assert.Equal(t, 3, s.Size())
	assert.Equal(t, 0, s.State().CurrentIndex, "adding to a loaded session keeps the selection")
}

func TestEmptySessionIsNoop(t *testing.T) {
	media := &fakeMedia{}
	s := New(media)
	ctx := context.Background()

	assert.Equal(t, core.StatusEmpty, s.Status())
	assert.NoError(t, s.TogglePlay(ctx))
	assert.NoError(t, s.AdvanceNext(ctx))
	assert.NoError(t, s.AdvancePrevious(ctx))
	assert.NoError(t, s.SeekRelative(time.Second))
	assert.NoError(t, s.OnTrackEnded(ctx))
	assert.Empty(t, media.calls)
	assert.Equal(t, -1, s.State().CurrentIndex)
}

func TestAdvanceNextLinearWraps(t *testing.T) {
	s, _, _ := newTestSession(t, "A", "B", "C")
	ctx := context.Background()

	var visited []string
	for range 3 {
		require.NoError(t, s.AdvanceNext(ctx))
		visited = append(visited, currentName(s))
	}
	assert.Equal(t, []string{"B", "C", "A"}, visited)
}

func TestAdvancePreviousLinearWraps(t *testing.T) {
	s, _, _ := newTestSession(t, "A", "B", "C")
	ctx := context.Background()

	require.NoError(t, s.AdvancePrevious(ctx))
	assert.Equal(t, 2, s.State().CurrentIndex)
	require.NoError(t, s.AdvancePrevious(ctx))
	assert.Equal(t, 1, s.State().CurrentIndex)
}

func TestPreviousUndoesNext(t *testing.T) {
	for _, shuffling := range []bool{false, true} {
		name := "linear"
		if shuffling {
			name = "shuffle"
		}
		t.Run(name, func(t *testing.T) {
			s, _, _ := newTestSession(t, "A", "B", "C", "D", "E")
			ctx := context.Background()
			require.NoError(t, s.SetShuffling(ctx, shuffling))

			for range 10 {
				before := s.State().CurrentIndex
				require.NoError(t, s.AdvanceNext(ctx))
				require.NoError(t, s.AdvancePrevious(ctx))
				assert.Equal(t, before, s.State().CurrentIndex)
				require.NoError(t, s.AdvanceNext(ctx))
			}
		})
	}
}

func TestLoadTrackKeepsPlaying(t *testing.T) {
	s, media, _ := newTestSession(t, "A", "B")
	ctx := context.Background()

	require.NoError(t, s.TogglePlay(ctx))
	require.Equal(t, core.StatusPlaying, s.Status())

	require.NoError(t, s.AdvanceNext(ctx))
	assert.Equal(t, core.StatusPlaying, s.Status())
	assert.Equal(t, []string{"load:A", "play", "load:B", "play"}, media.calls)
	assert.True(t, media.playing)
}

func TestLoadTrackWhilePausedStaysLoaded(t *testing.T) {
	s, media, _ := newTestSession(t, "A", "B")
	ctx := context.Background()

	require.NoError(t, s.TogglePlay(ctx))
	require.NoError(t, s.TogglePlay(ctx))
	assert.Equal(t, core.StatusPaused, s.Status())

	require.NoError(t, s.LoadTrack(ctx, 1))
	assert.Equal(t, core.StatusLoaded, s.Status())
	assert.Equal(t, "load:B", media.lastCall())
}

func TestLoadTrackInvalidIndex(t *testing.T) {
	s, media, _ := newTestSession(t, "A", "B")
	before := s.State()
	calls := len(media.calls)

	for _, index := range []int{-1, 2, 99} {
		err := s.LoadTrack(context.Background(), index)
		assert.ErrorIs(t, err, cerrors.ErrInvalidIndex)
	}
	assert.Equal(t, before, s.State())
	assert.Len(t, media.calls, calls)
}

func TestLoadFailureLeavesTrackSelected(t *testing.T) {
	s, media, _ := newTestSession(t, "A", "B")
	ctx := context.Background()
	require.NoError(t, s.TogglePlay(ctx))

	media.loadErr = cerrors.ErrUnsupportedFormat
	err := s.AdvanceNext(ctx)
	assert.ErrorIs(t, err, cerrors.ErrUnsupportedFormat)
	assert.Equal(t, 1, s.State().CurrentIndex)
	assert.False(t, s.State().IsPlaying)
	assert.Equal(t, core.StatusLoaded, s.Status())
	assert.ErrorIs(t, s.LastError(), cerrors.ErrUnsupportedFormat)
}

func TestPlayFailureStaysPaused(t *testing.T) {
	s, media, _ := newTestSession(t, "A")
	media.playErr = cerrors.ErrAudioUnavailable

	err := s.TogglePlay(context.Background())
	assert.ErrorIs(t, err, cerrors.ErrAudioUnavailable)
	assert.False(t, s.State().IsPlaying)
}

func TestOnTrackEnded(t *testing.T) {
	t.Run("advances and keeps playing", func(t *testing.T) {
		s, _, _ := newTestSession(t, "A", "B", "C")
		ctx := context.Background()
		require.NoError(t, s.TogglePlay(ctx))

		require.NoError(t, s.OnTrackEnded(ctx))
		assert.Equal(t, 1, s.State().CurrentIndex)
		assert.True(t, s.State().IsPlaying)
	})

	t.Run("last track wraps to first", func(t *testing.T) {
		s, _, _ := newTestSession(t, "A", "B")
		ctx := context.Background()
		require.NoError(t, s.PlayIndex(ctx, 1))

		require.NoError(t, s.OnTrackEnded(ctx))
		assert.Equal(t, 0, s.State().CurrentIndex)
	})

	t.Run("repeat replays without touching history", func(t *testing.T) {
		s, media, _ := newTestSession(t, "A", "B", "C")
		ctx := context.Background()
		require.NoError(t, s.SetShuffling(ctx, true))
		s.SetRepeating(true)
		media.pos = 42 * time.Second

		index := s.State().CurrentIndex
		history := s.History()
		gen := media.gen

		require.NoError(t, s.OnTrackEnded(ctx))
		assert.Equal(t, index, s.State().CurrentIndex)
		assert.Equal(t, history, s.History())
		assert.Equal(t, gen, media.gen, "repeat must not reload")
		assert.Equal(t, time.Duration(0), media.pos)
		assert.Equal(t, []string{"seek:0s", "play"}, media.calls[len(media.calls)-2:])
		assert.True(t, s.State().IsPlaying)
	})
}

func TestSeekRelative(t *testing.T) {
	tests := []struct {
		name     string
		pos      time.Duration
		dur      time.Duration
		durKnown bool
		delta    time.Duration
		want     time.Duration
	}{
		{"forward", 10 * time.Second, 100 * time.Second, true, 15 * time.Second, 25 * time.Second},
		{"clamp to end", 90 * time.Second, 100 * time.Second, true, 15 * time.Second, 100 * time.Second},
		{"rewind", 30 * time.Second, 100 * time.Second, true, -15 * time.Second, 15 * time.Second},
		{"clamp to start", 5 * time.Second, 100 * time.Second, true, -15 * time.Second, 0},
		{"unknown duration", 5 * time.Second, 0, false, 15 * time.Second, 20 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, media, _ := newTestSession(t, "A")
			media.pos, media.dur, media.durKnown = tt.pos, tt.dur, tt.durKnown

			require.NoError(t, s.SeekRelative(tt.delta))
			assert.Equal(t, tt.want, media.pos)
		})
	}
}

func TestForwardRewindUseSeekStep(t *testing.T) {
	media := &fakeMedia{dur: time.Minute, durKnown: true}
	s := New(media, WithSeekStep(5*time.Second))
	tracks, _ := newTracks("A")
	require.NoError(t, s.AddTracks(context.Background(), tracks...))

	require.NoError(t, s.Forward())
	require.NoError(t, s.Forward())
	require.NoError(t, s.Rewind())
	assert.Equal(t, 5*time.Second, media.pos)
}

func TestSeekAbsolute(t *testing.T) {
	tests := []struct {
		fraction float64
		want     time.Duration
	}{
		{0.5, 50 * time.Second},
		{0, 0},
		{1, 100 * time.Second},
		{1.5, 100 * time.Second},
		{-0.3, 0},
	}

	for _, tt := range tests {
		s, media, _ := newTestSession(t, "A")
		media.dur, media.durKnown = 100*time.Second, true
		require.NoError(t, s.SeekAbsolute(tt.fraction))
		assert.Equal(t, tt.want, media.pos, "fraction %v", tt.fraction)
	}
}

func TestSeekAbsoluteUsesTrackDurationFallback(t *testing.T) {
	s, media, _ := newTestSession(t, "A")
	s.Current().SetDuration(40 * time.Second)

	require.NoError(t, s.SeekAbsolute(0.25))
	assert.Equal(t, 10*time.Second, media.pos)
}

func TestSeekAbsoluteUnknownDurationIsNoop(t *testing.T) {
	s, media, _ := newTestSession(t, "A")
	calls := len(media.calls)

	require.NoError(t, s.SeekAbsolute(0.5))
	assert.Len(t, media.calls, calls)
}

func TestRemoveTrack(t *testing.T) {
	tests := []struct {
		name        string
		current     int
		remove      int
		wantIndex   int
		wantCurrent string
		wantReload  bool
	}{
		{"before current", 2, 0, 1, "C", false},
		{"after current", 1, 3, 1, "B", false},
		{"current in middle", 1, 1, 1, "C", true},
		{"current last", 3, 3, 0, "A", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, media, locators := newTestSession(t, "A", "B", "C", "D")
			ctx := context.Background()
			require.NoError(t, s.LoadTrack(ctx, tt.current))
			gen := media.gen

			require.NoError(t, s.RemoveTrack(ctx, tt.remove))
			assert.Equal(t, 3, s.Size())
			assert.Equal(t, tt.wantIndex, s.State().CurrentIndex)
			assert.Equal(t, tt.wantCurrent, currentName(s))
			assert.Equal(t, 1, locators[tt.remove].released)
			assert.Equal(t, tt.wantReload, media.gen != gen)
		})
	}
}

func TestRemoveCurrentKeepsPlaying(t *testing.T) {
	s, media, _ := newTestSession(t, "A", "B", "C")
	ctx := context.Background()
	require.NoError(t, s.TogglePlay(ctx))

	require.NoError(t, s.RemoveTrack(ctx, 0))
	assert.Equal(t, "B", currentName(s))
	assert.True(t, s.State().IsPlaying)
	assert.Equal(t, []string{"load:B", "play"}, media.calls[len(media.calls)-2:])
}

func TestRemoveOnlyTrackEmptiesSession(t *testing.T) {
	s, media, locators := newTestSession(t, "A")
	ctx := context.Background()
	require.NoError(t, s.SetShuffling(ctx, true))

	require.NoError(t, s.RemoveTrack(ctx, 0))
	assert.Equal(t, core.StatusEmpty, s.Status())
	assert.Equal(t, -1, s.State().CurrentIndex)
	assert.False(t, s.State().IsPlaying)
	assert.True(t, s.State().IsShuffling)
	assert.Empty(t, s.History())
	assert.Equal(t, "unload", media.lastCall())
	assert.Equal(t, 1, locators[0].released)
}

func TestRemoveTrackInvalidIndex(t *testing.T) {
	s, _, locators := newTestSession(t, "A", "B")

	err := s.RemoveTrack(context.Background(), 5)
	assert.ErrorIs(t, err, cerrors.ErrInvalidIndex)
	assert.Equal(t, 2, s.Size())
	assert.Zero(t, locators[0].released)
}

func TestRemoveTrackRenumbersHistory(t *testing.T) {
	for remove := range 6 {
		s, _, _ := newTestSession(t, "A", "B", "C", "D", "E", "F")
		ctx := context.Background()
		require.NoError(t, s.SetShuffling(ctx, true))
		for range 3 {
			require.NoError(t, s.AdvanceNext(ctx))
		}

		before := s.History()
		current := s.State().CurrentIndex
		want := lo.FilterMap(before, func(i int, _ int) (int, bool) {
			switch {
			case i == remove:
				return 0, false
			case i > remove:
				return i - 1, true
			default:
				return i, true
			}
		})

		require.NoError(t, s.RemoveTrack(ctx, remove))
		if remove == current && (len(want) == 0 || want[len(want)-1] != s.State().CurrentIndex) {
			want = append(want, s.State().CurrentIndex)
		}
		assert.Equal(t, want, s.History(), "remove %d from %v", remove, before)
		if remove < current {
			assert.Equal(t, current-1, s.State().CurrentIndex)
		}
		if remove > current {
			assert.Equal(t, current, s.State().CurrentIndex)
		}
	}
}

func TestSetRepeatingIdempotent(t *testing.T) {
	s, _, _ := newTestSession(t, "A", "B")

	s.SetRepeating(true)
	once := s.Snapshot()
	s.SetRepeating(true)
	assert.Equal(t, once, s.Snapshot())
	assert.True(t, s.State().IsRepeating)

	s.ToggleRepeat()
	assert.False(t, s.State().IsRepeating)
}

func TestSetShuffling(t *testing.T) {
	s, _, _ := newTestSession(t, "A", "B", "C", "D")
	ctx := context.Background()

	require.NoError(t, s.SetShuffling(ctx, true))
	assert.True(t, s.State().IsShuffling)
	assert.True(t, s.State().IsPlaying, "enabling shuffle starts playback")
	require.Len(t, s.History(), 1)
	assert.Equal(t, s.History()[0], s.State().CurrentIndex)

	require.NoError(t, s.AdvanceNext(ctx))
	index := s.State().CurrentIndex

	require.NoError(t, s.SetShuffling(ctx, false))
	assert.False(t, s.State().IsShuffling)
	assert.Empty(t, s.History())
	assert.Equal(t, index, s.State().CurrentIndex)
	assert.True(t, s.State().IsPlaying)
}

func TestShuffleVisitsEveryTrackOncePerCycle(t *testing.T) {
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	s, _, _ := newTestSession(t, names...)
	ctx := context.Background()
	require.NoError(t, s.SetShuffling(ctx, true))

	seen := []int{s.State().CurrentIndex}
	for range len(names) - 1 {
		require.NoError(t, s.AdvanceNext(ctx))
		seen = append(seen, s.State().CurrentIndex)
	}
	assert.ElementsMatch(t, lo.Range(len(names)), seen)

	last := s.State().CurrentIndex
	require.NoError(t, s.AdvanceNext(ctx))
	assert.NotEqual(t, last, s.State().CurrentIndex, "no immediate repeat across cycles")
}

func TestShuffleTwoTracks(t *testing.T) {
	s, _, _ := newTestSession(t, "A", "B")
	ctx := context.Background()
	require.NoError(t, s.SetShuffling(ctx, true))

	seed := s.State().CurrentIndex
	require.NoError(t, s.AdvanceNext(ctx))
	assert.Equal(t, 1-seed, s.State().CurrentIndex)
	require.NoError(t, s.AdvanceNext(ctx))
	assert.Equal(t, seed, s.State().CurrentIndex)
	assert.Equal(t, []int{1 - seed, seed}, s.History())
}

func TestClear(t *testing.T) {
	s, media, locators := newTestSession(t, "A", "B", "C")
	ctx := context.Background()
	require.NoError(t, s.TogglePlay(ctx))
	s.SetRepeating(true)

	require.NoError(t, s.Clear())
	assert.Equal(t, core.StatusEmpty, s.Status())
	assert.Zero(t, s.Size())
	assert.True(t, s.State().IsRepeating)
	assert.Equal(t, "unload", media.lastCall())
	for _, l := range locators {
		assert.Equal(t, 1, l.released)
	}
}

func TestAddWhileShufflingSeedsCycleAtFirstTrack(t *testing.T) {
	media := &fakeMedia{}
	s := New(media, WithRand(rand.New(rand.NewSource(3))))
	ctx := context.Background()
	require.NoError(t, s.SetShuffling(ctx, true))
	assert.Equal(t, -1, s.State().CurrentIndex)

	tracks, _ := newTracks("A", "B", "C", "D")
	require.NoError(t, s.AddTracks(ctx, tracks...))
	assert.Equal(t, 0, s.State().CurrentIndex)
	assert.Equal(t, []int{0}, s.History())

	seen := map[int]bool{0: true}
	for range 3 {
		require.NoError(t, s.AdvanceNext(ctx))
		assert.False(t, seen[s.State().CurrentIndex], "index %d repeated within a cycle", s.State().CurrentIndex)
		seen[s.State().CurrentIndex] = true
	}
	assert.Len(t, seen, 4)
}

// shuffledSession returns a playing session with shuffle on, seeded with seed.
func shuffledSession(t *testing.T, seed int64, names ...string) *Session {
	t.Helper()
	s := New(&fakeMedia{}, WithRand(rand.New(rand.NewSource(seed))))
	tracks, _ := newTracks(names...)
	ctx := context.Background()
	require.NoError(t, s.AddTracks(ctx, tracks...))
	require.NoError(t, s.SetShuffling(ctx, true))
	return s
}

func lastEntry(s *Session) int {
	h := s.History()
	if len(h) == 0 {
		return -1
	}
	return h[len(h)-1]
}

func TestPlayIndexWhileShufflingRecordsHistory(t *testing.T) {
	ctx := context.Background()
	for seed := range int64(20) {
		s := shuffledSession(t, seed, "A", "B")
		first := s.State().CurrentIndex

		require.NoError(t, s.PlayIndex(ctx, 1-first))
		assert.Equal(t, []int{first, 1 - first}, s.History())

		require.NoError(t, s.AdvanceNext(ctx))
		assert.Equal(t, first, s.State().CurrentIndex, "seed %d: picked track replayed", seed)
		assert.Equal(t, s.State().CurrentIndex, lastEntry(s))
	}
}

func TestPlayIndexCurrentWhileShufflingDoesNotDuplicate(t *testing.T) {
	s := shuffledSession(t, 1, "A", "B", "C")
	current := s.State().CurrentIndex

	require.NoError(t, s.PlayIndex(context.Background(), current))
	assert.Equal(t, []int{current}, s.History())
}

func TestRemoveCurrentWhileShufflingRecordsReplacement(t *testing.T) {
	ctx := context.Background()
	for seed := range int64(50) {
		s := shuffledSession(t, seed, "A", "B", "C")

		require.NoError(t, s.RemoveTrack(ctx, s.State().CurrentIndex))
		replacement := s.State().CurrentIndex
		require.Equal(t, replacement, lastEntry(s), "seed %d", seed)

		require.NoError(t, s.AdvanceNext(ctx))
		assert.NotEqual(t, replacement, s.State().CurrentIndex, "seed %d: replacement replayed", seed)
	}
}

func TestPreviousFallbackWhileShufflingRecordsHistory(t *testing.T) {
	ctx := context.Background()
	for seed := range int64(20) {
		s := shuffledSession(t, seed, "A", "B", "C")
		first := s.State().CurrentIndex

		require.NoError(t, s.AdvancePrevious(ctx))
		prev := s.State().CurrentIndex
		require.NotEqual(t, first, prev)
		assert.Equal(t, []int{first, prev}, s.History())

		require.NoError(t, s.AdvanceNext(ctx))
		assert.Equal(t, 3-first-prev, s.State().CurrentIndex, "seed %d: next must be the unvisited track", seed)
	}
}

func TestSetVolumeClamps(t *testing.T) {
	media := &fakeMedia{}
	s := New(media, WithVolume(60))
	assert.Equal(t, 60, media.volume)

	s.SetVolume(150)
	assert.Equal(t, 100, s.Volume())
	s.SetVolume(-5)
	assert.Equal(t, 0, media.volume)
}

func TestNoticeSwallowsIndexErrors(t *testing.T) {
	s := New(&fakeMedia{})
	assert.Equal(t, Notice{}, s.notice(cerrors.ErrInvalidIndex))

	boom := errors.New("boom")
	assert.Equal(t, boom, s.notice(boom).Err)
}
