// Package resolver turns Spotify track links into playable preview tracks.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/cassette/internal/core"
	cerrors "github.com/tessro/cassette/internal/errors"
	"github.com/tessro/cassette/internal/spotify/client"
)

// UnknownArtist is used when a track credits no artist.
const UnknownArtist = "Unknown Artist"

// Kind classifies a resolve failure.
type Kind string

const (
	KindInvalidLink   Kind = "invalid_link"
	KindNotConfigured Kind = "not_configured"
	KindAuth          Kind = "auth"
	KindNotFound      Kind = "not_found"
	KindNoPreview     Kind = "no_preview"
	KindRateLimited   Kind = "rate_limited"
	KindNetwork       Kind = "network"
)

// Error is a failed resolve. It matches cerrors.ErrResolveFailure.
type Error struct {
	Kind Kind
	Link string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("could not resolve %s: %v", e.Link, e.Err)
}

// Unwrap exposes both the resolve sentinel and the cause.
func (e *Error) Unwrap() []error {
	return []error{cerrors.ErrResolveFailure, e.Err}
}

// TrackGetter fetches track metadata by ID.
type TrackGetter interface {
	Configured() bool
	GetTrack(ctx context.Context, id, market string) (*client.Track, error)
}

// Resolver implements core.Resolver using the Spotify Web API.
type Resolver struct {
	client TrackGetter
	market string
	logger zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMarket sets the market used for preview availability.
func WithMarket(market string) Option {
	return func(r *Resolver) {
		r.market = market
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger.With().Str("component", "resolver").Logger()
	}
}

// New creates a resolver backed by c.
func New(c TrackGetter, opts ...Option) *Resolver {
	r := &Resolver{client: c, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the 30 second preview of the linked track.
func (r *Resolver) Resolve(ctx context.Context, link string) (*core.ResolvedTrack, error) {
	id, err := client.ParseTrackLink(link)
	if err != nil {
		return nil, &Error{Kind: KindInvalidLink, Link: link, Err: err}
	}
	if !r.client.Configured() {
		return nil, &Error{Kind: KindNotConfigured, Link: link, Err: cerrors.ErrNotConfigured}
	}

	track, err := r.client.GetTrack(ctx, id, r.market)
	if err != nil {
		kind := classify(err)
		r.logger.Debug().Err(err).Str("id", id).Str("kind", string(kind)).Msg("resolve failed")
		return nil, &Error{Kind: kind, Link: link, Err: err}
	}

	resolved, err := convertTrack(track)
	if err != nil {
		return nil, &Error{Kind: KindNoPreview, Link: link, Err: err}
	}
	r.logger.Debug().Str("id", id).Str("name", resolved.Name).Msg("resolved")
	return resolved, nil
}

func classify(err error) Kind {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, cerrors.ErrNotConfigured):
		return KindNotConfigured
	case errors.Is(err, cerrors.ErrNotAuthenticated):
		return KindAuth
	case errors.As(err, &apiErr) && apiErr.IsNotFound():
		return KindNotFound
	case errors.As(err, &apiErr) && apiErr.IsUnauthorized():
		return KindAuth
	case errors.As(err, &apiErr) && apiErr.IsRateLimited():
		return KindRateLimited
	default:
		return KindNetwork
	}
}

// convertTrack maps API metadata to a preview track.
func convertTrack(t *client.Track) (*core.ResolvedTrack, error) {
	if t == nil {
		return nil, cerrors.ErrNoPreviewAvailable
	}
	if t.PreviewURL == "" {
		return nil, cerrors.ErrNoPreviewAvailable
	}
	if _, err := url.ParseRequestURI(t.PreviewURL); err != nil {
		return nil, fmt.Errorf("%w: bad preview url", cerrors.ErrNoPreviewAvailable)
	}

	artist := t.PrimaryArtist()
	if artist == "" {
		artist = UnknownArtist
	}

	return &core.ResolvedTrack{
		URL:      t.PreviewURL,
		Name:     t.Name,
		Artist:   artist,
		// Whole seconds of the full track; probing the preview replaces it.
		Duration: t.Duration().Truncate(time.Second),
	}, nil
}
