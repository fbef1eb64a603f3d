//go:build (linux && cgo) || windows || darwin

package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog"

	"github.com/tessro/cassette/internal/core"
	cerrors "github.com/tessro/cassette/internal/errors"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

const speakerRate = beep.SampleRate(44100)

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(speakerRate, speakerRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return fmt.Errorf("%w: %w", cerrors.ErrAudioUnavailable, speakerErr)
	}
	return nil
}

// Element plays one source at a time on the speaker.
type Element struct {
	mu     sync.Mutex
	sink   core.MediaSink
	logger zerolog.Logger
	tick   time.Duration

	gen      uint64
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	percent  int
	queued   bool
	playing  bool
	wantPlay bool

	cancelLoad context.CancelFunc
	stopTick   func()
}

// NewElement creates an element that reports to sink. The speaker is
// initialized on first load.
func NewElement(sink core.MediaSink, opts ...Option) *Element {
	o := buildOptions(opts)
	return &Element{
		sink:    sink,
		logger:  o.logger,
		tick:    o.tick,
		percent: 100,
	}
}

// Load replaces the current source. Decoding happens in the background and
// finishes with a metadata or error event.
func (e *Element) Load(ctx context.Context, loc core.Locator) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.gen++
	e.stopLocked()

	if err := CheckPlayable(loc.URI()); err != nil {
		return err
	}
	if err := initSpeaker(); err != nil {
		return err
	}

	loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancelLoad = cancel
	go e.load(loadCtx, e.gen, loc)
	return nil
}

func (e *Element) load(ctx context.Context, gen uint64, loc core.Locator) {
	data, err := readAll(ctx, loc)
	var (
		s beep.StreamSeekCloser
		f beep.Format
	)
	if err == nil {
		s, f, err = Decode(data, loc.URI())
	}

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		if s != nil {
			_ = s.Close()
		}
		return
	}
	if err != nil {
		e.mu.Unlock()
		e.logger.Warn().Err(err).Str("uri", loc.URI()).Msg("load failed")
		e.emit(core.MediaEvent{Kind: core.MediaError, Generation: gen, Err: err})
		return
	}

	e.streamer = s
	e.format = f
	e.buildLocked()
	if e.wantPlay {
		e.startLocked()
	}
	d := f.SampleRate.D(s.Len())
	e.mu.Unlock()

	e.logger.Debug().
		Str("uri", loc.URI()).
		Dur("duration", d).
		Int("sample_rate", int(f.SampleRate)).
		Msg("loaded")
	e.emit(core.MediaEvent{Kind: core.MediaMetadataLoaded, Generation: gen, Duration: d})
}

// buildLocked wraps the streamer in resampling, pause and volume stages.
func (e *Element) buildLocked() {
	var s beep.Streamer = e.streamer
	if e.format.SampleRate != speakerRate {
		s = beep.Resample(4, e.format.SampleRate, speakerRate, s)
	}
	e.ctrl = &beep.Ctrl{Streamer: s, Paused: true}
	level, silent := gain(e.percent)
	e.volume = &effects.Volume{Streamer: e.ctrl, Base: 2, Volume: level, Silent: silent}
	e.queued = false
}

// Unload stops output and drops the source.
func (e *Element) Unload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.stopLocked()
}

// Play starts or resumes output. Before decoding finishes it only records
// the request.
func (e *Element) Play(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		e.wantPlay = true
		return nil
	}
	if !e.playing {
		e.startLocked()
	}
	return nil
}

func (e *Element) startLocked() {
	e.wantPlay = false
	if !e.queued {
		// A drained chain has left the mixer; replaying after a rewind
		// needs a fresh one around the same streamer.
		e.buildLocked()
		gen := e.gen
		speaker.Play(beep.Seq(e.volume, beep.Callback(func() {
			// Runs under the speaker lock.
			go e.finished(gen)
		})))
		e.queued = true
	}

	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()

	e.playing = true
	if e.stopTick == nil {
		gen := e.gen
		e.stopTick = startTicker(e.tick, func() { e.timeUpdate(gen) })
	}
}

// Pause pauses output.
func (e *Element) Pause(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.wantPlay = false
	if e.ctrl != nil {
		speaker.Lock()
		e.ctrl.Paused = true
		speaker.Unlock()
	}
	e.playing = false
	e.haltTickLocked()
	return nil
}

// Generation returns the generation of the most recent Load.
func (e *Element) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

// CurrentTime returns the playback position.
func (e *Element) CurrentTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positionLocked()
}

func (e *Element) positionLocked() time.Duration {
	if e.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := e.streamer.Position()
	speaker.Unlock()
	return e.format.SampleRate.D(pos)
}

// SetCurrentTime seeks the source.
func (e *Element) SetCurrentTime(d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return nil
	}

	speaker.Lock()
	defer speaker.Unlock()
	n := min(max(e.format.SampleRate.N(d), 0), e.streamer.Len())
	if err := e.streamer.Seek(n); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	return nil
}

// Duration returns the source duration once decoded.
func (e *Element) Duration() (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return 0, false
	}
	d := e.format.SampleRate.D(e.streamer.Len())
	return d, d > 0
}

// SetVolume sets the output volume (0-100).
func (e *Element) SetVolume(percent int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.percent = min(max(percent, 0), 100)
	if e.volume == nil {
		return
	}
	level, silent := gain(e.percent)
	speaker.Lock()
	e.volume.Volume = level
	e.volume.Silent = silent
	speaker.Unlock()
}

// stopLocked silences and detaches the current chain (must be called with
// lock held).
func (e *Element) stopLocked() {
	e.wantPlay = false
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
	e.haltTickLocked()

	if e.ctrl != nil {
		speaker.Lock()
		// A nil streamer ends the chain; its callback sees a stale
		// generation and does nothing.
		e.ctrl.Streamer = nil
		speaker.Unlock()
	}
	if e.streamer != nil {
		_ = e.streamer.Close()
		e.streamer = nil
	}
	e.ctrl = nil
	e.volume = nil
	e.queued = false
	e.playing = false
}

func (e *Element) haltTickLocked() {
	if e.stopTick != nil {
		e.stopTick()
		e.stopTick = nil
	}
}

func (e *Element) finished(gen uint64) {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.queued = false
	e.playing = false
	e.haltTickLocked()
	pos := e.positionLocked()
	e.mu.Unlock()

	e.emit(core.MediaEvent{Kind: core.MediaEnded, Generation: gen, Position: pos})
}

func (e *Element) timeUpdate(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || !e.playing || e.streamer == nil {
		e.mu.Unlock()
		return
	}
	pos := e.positionLocked()
	d := e.format.SampleRate.D(e.streamer.Len())
	e.mu.Unlock()

	e.emit(core.MediaEvent{Kind: core.MediaTimeUpdate, Generation: gen, Position: pos, Duration: d})
}

func (e *Element) emit(ev core.MediaEvent) {
	if e.sink != nil {
		e.sink(ev)
	}
}
