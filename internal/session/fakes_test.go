package session

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/tessro/cassette/internal/core"
)

type fakeLocator struct {
	uri      string
	released int
}

func (l *fakeLocator) URI() string { return l.uri }

func (l *fakeLocator) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(l.uri)), nil
}

func (l *fakeLocator) Release() error {
	l.released++
	return nil
}

// fakeMedia records the commands a session issues.
type fakeMedia struct {
	gen      uint64
	loaded   core.Locator
	playing  bool
	pos      time.Duration
	dur      time.Duration
	durKnown bool
	volume   int

	loadErr error
	playErr error
	calls   []string
}

func (m *fakeMedia) Load(_ context.Context, loc core.Locator) error {
	m.gen++
	m.loaded = loc
	m.playing = false
	m.pos = 0
	m.calls = append(m.calls, "load:"+loc.URI())
	return m.loadErr
}

func (m *fakeMedia) Unload() {
	m.gen++
	m.loaded = nil
	m.playing = false
	m.calls = append(m.calls, "unload")
}

func (m *fakeMedia) Play(context.Context) error {
	m.calls = append(m.calls, "play")
	if m.playErr != nil {
		return m.playErr
	}
	m.playing = true
	return nil
}

func (m *fakeMedia) Pause(context.Context) error {
	m.calls = append(m.calls, "pause")
	m.playing = false
	return nil
}

func (m *fakeMedia) Generation() uint64 { return m.gen }

func (m *fakeMedia) CurrentTime() time.Duration { return m.pos }

func (m *fakeMedia) SetCurrentTime(d time.Duration) error {
	m.calls = append(m.calls, fmt.Sprintf("seek:%s", d))
	m.pos = d
	return nil
}

func (m *fakeMedia) Duration() (time.Duration, bool) { return m.dur, m.durKnown }

func (m *fakeMedia) SetVolume(percent int) { m.volume = percent }

func (m *fakeMedia) lastCall() string {
	if len(m.calls) == 0 {
		return ""
	}
	return m.calls[len(m.calls)-1]
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, link string) (*core.ResolvedTrack, error) {
	args := m.Called(ctx, link)
	result, _ := args.Get(0).(*core.ResolvedTrack)
	return result, args.Error(1)
}

type fakeProber struct {
	durations map[string]time.Duration
}

func (p *fakeProber) Probe(_ context.Context, loc core.Locator) (time.Duration, error) {
	d, ok := p.durations[loc.URI()]
	if !ok {
		return 0, fmt.Errorf("no duration for %s", loc.URI())
	}
	return d, nil
}

func newTracks(names ...string) ([]*core.Track, []*fakeLocator) {
	tracks := make([]*core.Track, len(names))
	locators := make([]*fakeLocator, len(names))
	for i, name := range names {
		locators[i] = &fakeLocator{uri: name}
		tracks[i] = core.NewTrack(name, locators[i], core.SourceLocal)
	}
	return tracks, locators
}
