package media

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/cassette/internal/core"
)

// SilentElement is a media element without audio output. It decodes sources
// for their duration and runs a wall clock in place of playback, so sessions
// behave as they would with sound.
type SilentElement struct {
	mu     sync.Mutex
	sink   core.MediaSink
	logger zerolog.Logger
	tick   time.Duration

	gen      uint64
	loaded   bool
	duration time.Duration
	offset   time.Duration
	started  time.Time
	playing  bool
	wantPlay bool
	volume   int

	cancelLoad context.CancelFunc
	stopTick   func()
	endTimer   *time.Timer
}

// NewSilentElement creates a silent element that reports to sink.
func NewSilentElement(sink core.MediaSink, opts ...Option) *SilentElement {
	o := buildOptions(opts)
	return &SilentElement{
		sink:   sink,
		logger: o.logger,
		tick:   o.tick,
		volume: 100,
	}
}

// Load decodes loc in the background and reports its duration.
func (e *SilentElement) Load(ctx context.Context, loc core.Locator) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.gen++
	e.stopLocked()
	e.loaded = false
	e.duration = 0
	e.offset = 0

	if err := CheckPlayable(loc.URI()); err != nil {
		return err
	}

	loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancelLoad = cancel
	go e.load(loadCtx, e.gen, loc)
	return nil
}

func (e *SilentElement) load(ctx context.Context, gen uint64, loc core.Locator) {
	d, err := NewProber().Probe(ctx, loc)

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	if err != nil {
		e.mu.Unlock()
		e.emit(core.MediaEvent{Kind: core.MediaError, Generation: gen, Err: err})
		return
	}
	e.loaded = true
	e.duration = d
	if e.wantPlay {
		e.startLocked()
	}
	e.mu.Unlock()

	e.logger.Debug().Str("uri", loc.URI()).Dur("duration", d).Msg("loaded")
	e.emit(core.MediaEvent{Kind: core.MediaMetadataLoaded, Generation: gen, Duration: d})
}

// Unload drops the current source.
func (e *SilentElement) Unload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.stopLocked()
	e.loaded = false
	e.duration = 0
	e.offset = 0
}

// Play starts the clock, or arms it to start once loading finishes.
func (e *SilentElement) Play(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		e.wantPlay = true
		return nil
	}
	if !e.playing {
		e.startLocked()
	}
	return nil
}

// Pause stops the clock.
func (e *SilentElement) Pause(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wantPlay = false
	if e.playing {
		e.offset = e.positionLocked()
		e.haltLocked()
	}
	return nil
}

// Generation returns the generation of the most recent Load.
func (e *SilentElement) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

// CurrentTime returns the clock position.
func (e *SilentElement) CurrentTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positionLocked()
}

// SetCurrentTime moves the clock.
func (e *SilentElement) SetCurrentTime(d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offset = min(max(d, 0), e.duration)
	if e.playing {
		e.haltLocked()
		e.startLocked()
	}
	return nil
}

// Duration returns the decoded duration.
func (e *SilentElement) Duration() (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration, e.loaded && e.duration > 0
}

// SetVolume records the volume.
func (e *SilentElement) SetVolume(percent int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = percent
}

func (e *SilentElement) positionLocked() time.Duration {
	if !e.playing {
		return e.offset
	}
	return min(e.offset+time.Since(e.started), e.duration)
}

func (e *SilentElement) startLocked() {
	e.wantPlay = false
	e.playing = true
	e.started = time.Now()
	gen := e.gen
	e.endTimer = time.AfterFunc(e.duration-e.offset, func() { e.finished(gen) })
	e.stopTick = startTicker(e.tick, func() { e.timeUpdate(gen) })
}

// haltLocked stops the clock without recording the position.
func (e *SilentElement) haltLocked() {
	e.playing = false
	if e.endTimer != nil {
		e.endTimer.Stop()
		e.endTimer = nil
	}
	if e.stopTick != nil {
		e.stopTick()
		e.stopTick = nil
	}
}

func (e *SilentElement) stopLocked() {
	e.wantPlay = false
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
	e.haltLocked()
}

func (e *SilentElement) finished(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || !e.playing {
		e.mu.Unlock()
		return
	}
	e.offset = e.duration
	pos := e.offset
	e.haltLocked()
	e.mu.Unlock()

	e.emit(core.MediaEvent{Kind: core.MediaEnded, Generation: gen, Position: pos})
}

func (e *SilentElement) timeUpdate(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || !e.playing {
		e.mu.Unlock()
		return
	}
	pos, dur := e.positionLocked(), e.duration
	e.mu.Unlock()

	e.emit(core.MediaEvent{Kind: core.MediaTimeUpdate, Generation: gen, Position: pos, Duration: dur})
}

func (e *SilentElement) emit(ev core.MediaEvent) {
	if e.sink != nil {
		e.sink(ev)
	}
}
