package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tessro/cassette/internal/core"
	cerrors "github.com/tessro/cassette/internal/errors"
	"github.com/tessro/cassette/internal/library"
)

func runJobs(t *testing.T, s *Session, n Notice) []Notice {
	t.Helper()
	var out []Notice
	for _, job := range n.Jobs {
		ev := job(context.Background())
		require.NotNil(t, ev)
		out = append(out, s.Handle(context.Background(), ev))
	}
	return out
}

func TestHandleMediaEnded(t *testing.T) {
	s, media, _ := newTestSession(t, "A", "B", "C")
	ctx := context.Background()
	require.NoError(t, s.TogglePlay(ctx))

	stale := MediaEvent{core.MediaEvent{Kind: core.MediaEnded, Generation: media.gen - 1}}
	assert.Equal(t, Notice{}, s.Handle(ctx, stale))
	assert.Equal(t, 0, s.State().CurrentIndex, "stale end must be ignored")

	ended := MediaEvent{core.MediaEvent{Kind: core.MediaEnded, Generation: media.gen}}
	assert.Equal(t, Notice{}, s.Handle(ctx, ended))
	assert.Equal(t, 1, s.State().CurrentIndex)

	// The end event of the old source arrives after the switch.
	assert.Equal(t, Notice{}, s.Handle(ctx, ended))
	assert.Equal(t, 1, s.State().CurrentIndex)
}

func TestHandleMetadataLoaded(t *testing.T) {
	s, media, _ := newTestSession(t, "A")
	ev := MediaEvent{core.MediaEvent{
		Kind:       core.MediaMetadataLoaded,
		Generation: media.gen,
		Duration:   3*time.Minute + 7*time.Second,
	}}

	s.Handle(context.Background(), ev)
	assert.Equal(t, "3:07", s.Entries()[0].DisplayDuration)
}

func TestHandleMediaError(t *testing.T) {
	s, media, _ := newTestSession(t, "A")
	require.NoError(t, s.TogglePlay(context.Background()))

	boom := errors.New("decode failed")
	n := s.Handle(context.Background(), MediaEvent{core.MediaEvent{Kind: core.MediaError, Generation: media.gen, Err: boom}})
	assert.ErrorIs(t, n.Err, boom)
	assert.False(t, s.State().IsPlaying)
}

func TestAddLinkResolves(t *testing.T) {
	resolver := &mockResolver{}
	link := "https://open.spotify.com/track/abc"
	resolver.On("Resolve", mock.Anything, link).Return(&core.ResolvedTrack{
		URL:      "https://p.scdn.co/mp3-preview/abc",
		Name:     "Song",
		Artist:   "Band",
		Duration: 30 * time.Second,
	}, nil)

	s := New(&fakeMedia{}, WithResolver(resolver))
	n := s.Execute(context.Background(), Command{Kind: CmdAdd, Args: []string{link}})
	require.Len(t, n.Jobs, 1)

	results := runJobs(t, s, n)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "Added Song - Band", results[0].Message)

	require.Equal(t, 1, s.Size())
	assert.Equal(t, []core.Entry{{Index: 0, DisplayName: "Song - Band", DisplayDuration: "0:30", IsCurrent: true}}, s.Entries())
	assert.True(t, s.Current().IsRemote())
	resolver.AssertExpectations(t)
}

func TestAddLinkResolveFailureLeavesPlaylistUnchanged(t *testing.T) {
	resolver := &mockResolver{}
	failure := cerrors.WithSuggestion(errors.Join(cerrors.ErrResolveFailure, cerrors.ErrNoPreviewAvailable), "")
	resolver.On("Resolve", mock.Anything, "spotify:track:abc").Return(nil, failure)

	s, _, _ := newTestSession(t, "A")
	s.resolver = resolver
	before := s.Snapshot()

	n := s.Execute(context.Background(), Command{Kind: CmdAdd, Args: []string{"spotify:track:abc"}})
	results := runJobs(t, s, n)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, cerrors.ErrResolveFailure)
	assert.Equal(t, before, s.Snapshot())
	resolver.AssertExpectations(t)
}

func TestAddLinkWithoutResolver(t *testing.T) {
	s := New(&fakeMedia{})
	n := s.Execute(context.Background(), Command{Kind: CmdAdd, Args: []string{"spotify:track:abc"}})

	assert.Empty(t, n.Jobs)
	assert.ErrorIs(t, n.Err, cerrors.ErrResolveFailure)
	assert.ErrorIs(t, n.Err, cerrors.ErrNotConfigured)
	assert.Zero(t, s.Size())
}

func TestAddPathsLoadsAndProbes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"one.mp3", "two.wav", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}

	prober := &fakeProber{durations: map[string]time.Duration{
		filepath.Join(dir, "one.mp3"): 61 * time.Second,
	}}
	s := New(&fakeMedia{}, WithProber(prober))

	n := s.Execute(context.Background(), Command{Kind: CmdAdd, Args: []string{dir}})
	results := runJobs(t, s, n)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "Added 2 tracks, skipped 1 file", results[0].Message)
	assert.Equal(t, 0, s.State().CurrentIndex)

	probes := runJobs(t, s, results[0])
	assert.Len(t, probes, 2)

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "one", entries[0].DisplayName)
	assert.Equal(t, "1:01", entries[0].DisplayDuration)
	assert.Equal(t, "two", entries[1].DisplayName)
	assert.Equal(t, "0:00", entries[1].DisplayDuration)
}

func TestAddPathsKeepsGoodFilesPastMissingOnes(t *testing.T) {
	dir := t.TempDir()
	var args []string
	for _, name := range []string{"a.mp3", "typo.mp3", "b.mp3"} {
		path := filepath.Join(dir, name)
		if name != "typo.mp3" {
			require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
		}
		args = append(args, path)
	}

	s := New(&fakeMedia{})
	n := s.Execute(context.Background(), Command{Kind: CmdAdd, Args: args})
	results := runJobs(t, s, n)
	require.Len(t, results, 1)

	assert.ErrorIs(t, results[0].Err, os.ErrNotExist)
	assert.Contains(t, results[0].Err.Error(), "typo.mp3")
	assert.Equal(t, "Added 2 tracks", results[0].Message)
	require.Len(t, s.Entries(), 2)
	assert.Equal(t, []string{"a", "b"}, []string{s.Entries()[0].DisplayName, s.Entries()[1].DisplayName})
	assert.Equal(t, 0, s.State().CurrentIndex)
}

func TestFilesEventSchedulesLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.ogg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	s := New(&fakeMedia{})
	n := s.Handle(context.Background(), FilesEvent{Files: []library.FileInput{library.FromPath(path)}})
	require.Len(t, n.Jobs, 1)

	runJobs(t, s, n)
	assert.Equal(t, 1, s.Size())
	assert.Equal(t, "song", s.Current().Name)
}

func TestTracksEventOnlyUnsupported(t *testing.T) {
	s := New(&fakeMedia{})
	n := s.Handle(context.Background(), TracksEvent{Errors: []error{
		cerrors.WithSuggestion(cerrors.ErrUnsupportedFile, ""),
	}})
	assert.NoError(t, n.Err)
	assert.Equal(t, "Skipped 1 file", n.Message)
	assert.Equal(t, core.StatusEmpty, s.Status())
}

func TestProbeCompletionAfterRemoval(t *testing.T) {
	s, _, _ := newTestSession(t, "A", "B", "C")
	ctx := context.Background()
	removed := s.Tracks()[1]

	require.NoError(t, s.RemoveTrack(ctx, 1))
	s.Handle(ctx, ProbedEvent{Track: removed, Duration: 42 * time.Second})

	assert.Equal(t, 42*time.Second, removed.Duration)
	for _, e := range s.Entries() {
		assert.Equal(t, "0:00", e.DisplayDuration, e.DisplayName)
	}
}

func TestExecuteCommands(t *testing.T) {
	s, media, _ := newTestSession(t, "A", "B", "C")
	ctx := context.Background()

	s.Execute(ctx, Cmd(CmdPlay))
	assert.Equal(t, core.StatusPlaying, s.Status())

	s.Execute(ctx, Cmd(CmdPause))
	assert.Equal(t, core.StatusPaused, s.Status())

	s.Execute(ctx, Cmd(CmdToggle))
	assert.Equal(t, core.StatusPlaying, s.Status())

	s.Execute(ctx, Cmd(CmdNext))
	assert.Equal(t, "B", currentName(s))
	s.Execute(ctx, Cmd(CmdPrevious))
	assert.Equal(t, "A", currentName(s))

	s.Execute(ctx, Command{Kind: CmdPlay, Index: 2})
	assert.Equal(t, "C", currentName(s))

	media.dur, media.durKnown = time.Minute, true
	s.Execute(ctx, Cmd(CmdForward))
	assert.Equal(t, 15*time.Second, media.pos)
	s.Execute(ctx, Cmd(CmdRewind))
	assert.Equal(t, time.Duration(0), media.pos)
	s.Execute(ctx, Command{Kind: CmdSeek, Fraction: 0.5})
	assert.Equal(t, 30*time.Second, media.pos)

	n := s.Execute(ctx, Command{Kind: CmdRepeat, Switch: SwitchOn})
	assert.Equal(t, "Repeat on", n.Message)
	n = s.Execute(ctx, Command{Kind: CmdRepeat})
	assert.Equal(t, "Repeat off", n.Message)

	n = s.Execute(ctx, Command{Kind: CmdShuffle, Switch: SwitchOn})
	assert.Equal(t, "Shuffle on", n.Message)
	assert.True(t, s.State().IsShuffling)

	n = s.Execute(ctx, Command{Kind: CmdRemove, Index: 0})
	assert.Equal(t, "Removed A", n.Message)
	assert.Equal(t, 2, s.Size())

	n = s.Execute(ctx, Command{Kind: CmdRemove, Index: 9})
	assert.Equal(t, Notice{}, n, "out of range removal is ignored")

	n = s.Execute(ctx, Command{Kind: CmdVolume, Volume: 40})
	assert.Equal(t, "Volume 40%", n.Message)
	assert.Equal(t, 40, media.volume)

	assert.Contains(t, s.Execute(ctx, Cmd(CmdList)).Message, "B")
	assert.Contains(t, s.Execute(ctx, Cmd(CmdHelp)).Message, "Commands:")
	assert.Contains(t, s.Execute(ctx, Cmd(CmdStatus)).Message, "playing")

	n = s.Execute(ctx, Cmd(CmdClear))
	assert.Equal(t, "Playlist cleared", n.Message)
	assert.Equal(t, core.StatusEmpty, s.Status())
	assert.Equal(t, "Playlist is empty", s.Listing())

	assert.True(t, s.Execute(ctx, Cmd(CmdQuit)).Quit)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input   string
		want    Command
		wantErr bool
	}{
		{input: "play", want: Command{Kind: CmdPlay, Index: -1}},
		{input: "play 3", want: Command{Kind: CmdPlay, Index: 2}},
		{input: "PAUSE", want: Command{Kind: CmdPause, Index: -1}},
		{input: "toggle", want: Command{Kind: CmdToggle, Index: -1}},
		{input: "n", want: Command{Kind: CmdNext, Index: -1}},
		{input: "prev", want: Command{Kind: CmdPrevious, Index: -1}},
		{input: "ff", want: Command{Kind: CmdForward, Index: -1}},
		{input: "rw", want: Command{Kind: CmdRewind, Index: -1}},
		{input: "seek 0.25", want: Command{Kind: CmdSeek, Index: -1, Fraction: 0.25}},
		{input: "repeat", want: Command{Kind: CmdRepeat, Index: -1, Switch: SwitchToggle}},
		{input: "repeat on", want: Command{Kind: CmdRepeat, Index: -1, Switch: SwitchOn}},
		{input: "shuffle off", want: Command{Kind: CmdShuffle, Index: -1, Switch: SwitchOff}},
		{input: "rm 1", want: Command{Kind: CmdRemove, Index: 0}},
		{input: "add a.mp3 spotify:track:x", want: Command{Kind: CmdAdd, Index: -1, Args: []string{"a.mp3", "spotify:track:x"}}},
		{input: "  ls  ", want: Command{Kind: CmdList, Index: -1}},
		{input: "vol 30", want: Command{Kind: CmdVolume, Index: -1, Volume: 30}},
		{input: "q", want: Command{Kind: CmdQuit, Index: -1}},
		{input: "", wantErr: true},
		{input: "dance", wantErr: true},
		{input: "play zero", wantErr: true},
		{input: "rm 0", wantErr: true},
		{input: "rm", wantErr: true},
		{input: "seek", wantErr: true},
		{input: "seek half", wantErr: true},
		{input: "shuffle maybe", wantErr: true},
		{input: "add", wantErr: true},
		{input: "vol loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCommand(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsLink(t *testing.T) {
	assert.True(t, IsLink("spotify:track:abc"))
	assert.True(t, IsLink("https://open.spotify.com/track/abc"))
	assert.False(t, IsLink("/music/song.mp3"))
	assert.False(t, IsLink("song.mp3"))
}

func TestLoopRun(t *testing.T) {
	s, _, _ := newTestSession(t, "A", "B")
	loop := NewLoop(8)

	loop.Post(CommandEvent{Command: Cmd(CmdPlay)})
	loop.Post(CommandEvent{Command: Cmd(CmdNext)})
	loop.Post(CommandEvent{Command: Cmd(CmdQuit)})

	var notices []Notice
	err := loop.Run(context.Background(), s, func(n Notice) {
		notices = append(notices, n)
	})
	require.NoError(t, err)
	assert.Len(t, notices, 3)
	assert.True(t, notices[2].Quit)
	assert.Equal(t, "B", currentName(s))
	assert.True(t, s.State().IsPlaying)

	// Posting after the loop stopped must not block.
	loop.Post(CommandEvent{Command: Cmd(CmdPlay)})
}

func TestLoopRunsJobs(t *testing.T) {
	resolver := &mockResolver{}
	resolver.On("Resolve", mock.Anything, "spotify:track:x").
		Return(&core.ResolvedTrack{URL: "https://example.com/x.mp3", Name: "X", Artist: "Y"}, nil)

	s := New(&fakeMedia{}, WithResolver(resolver))
	loop := NewLoop(8)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	loop.Post(CommandEvent{Command: Command{Kind: CmdAdd, Args: []string{"spotify:track:x"}}})
	err := loop.Run(ctx, s, func(n Notice) {
		if n.Message == "Added X - Y" {
			loop.Post(CommandEvent{Command: Cmd(CmdQuit)})
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Size())
}

func TestLoopMediaSink(t *testing.T) {
	loop := NewLoop(1)
	sink := loop.MediaSink()
	sink(core.MediaEvent{Kind: core.MediaTimeUpdate, Generation: 3})

	ev := <-loop.Events()
	me, ok := ev.(MediaEvent)
	require.True(t, ok)
	assert.Equal(t, uint64(3), me.Generation)
}
