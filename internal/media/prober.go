package media

import (
	"context"
	"time"

	"github.com/tessro/cassette/internal/core"
)

// Prober reads a track's audio to find its duration.
type Prober struct{}

// NewProber creates a prober.
func NewProber() *Prober {
	return &Prober{}
}

// Probe decodes loc's headers and returns its duration.
func (p *Prober) Probe(ctx context.Context, loc core.Locator) (time.Duration, error) {
	if err := CheckPlayable(loc.URI()); err != nil {
		return 0, err
	}
	data, err := readAll(ctx, loc)
	if err != nil {
		return 0, err
	}

	s, format, err := Decode(data, loc.URI())
	if err != nil {
		return 0, err
	}
	defer s.Close()

	return format.SampleRate.D(s.Len()), nil
}
