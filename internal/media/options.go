package media

import (
	"math"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTickInterval is how often time updates are emitted while playing.
const DefaultTickInterval = 250 * time.Millisecond

type options struct {
	logger zerolog.Logger
	tick   time.Duration
}

// Option configures an element.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger.With().Str("component", "media").Logger()
	}
}

// WithTickInterval sets the time update interval.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.tick = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger: zerolog.Nop(),
		tick:   DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// gain converts a 0-100 volume to a base-2 exponent for effects.Volume.
// The second result is true when the output should be silent.
func gain(percent int) (float64, bool) {
	if percent <= 0 {
		return 0, true
	}
	return math.Log2(float64(min(percent, 100)) / 100), false
}

// startTicker calls fn every interval until the returned stop func is called.
func startTicker(interval time.Duration, fn func()) func() {
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				fn()
			}
		}
	}()
	return func() { close(done) }
}
