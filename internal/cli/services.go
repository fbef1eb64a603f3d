package cli

import (
	"github.com/rs/zerolog"

	"github.com/tessro/cassette/internal/core"
	"github.com/tessro/cassette/internal/media"
	"github.com/tessro/cassette/internal/spotify/auth"
	"github.com/tessro/cassette/internal/spotify/client"
	"github.com/tessro/cassette/internal/spotify/resolver"
)

// newSpotifyClient builds an app-authenticated client with an on-disk token
// cache. A cache that cannot be opened is skipped.
func newSpotifyClient(logger zerolog.Logger) *client.Client {
	creds := auth.Credentials{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
	}
	opts := []client.Option{client.WithLogger(logger)}
	if storage, err := auth.NewTokenStorage(""); err == nil {
		opts = append(opts, client.WithTokenStorage(storage))
	} else {
		logger.Warn().Err(err).Msg("token cache unavailable")
	}
	return client.New(creds, opts...)
}

// newResolver returns a link resolver, or nil when Spotify is not configured.
func newResolver(logger zerolog.Logger) core.Resolver {
	if !cfg.Spotify.Configured() {
		return nil
	}
	return resolver.New(newSpotifyClient(logger),
		resolver.WithMarket(cfg.Spotify.Market),
		resolver.WithLogger(logger))
}

// newMediaElement picks the speaker output unless silent playback was asked
// for or this build has no audio backend.
func newMediaElement(sink core.MediaSink, silent bool, logger zerolog.Logger) core.MediaElement {
	if silent || !media.AudioAvailable {
		if !silent {
			logger.Warn().Msg("no audio backend in this build, playing silently")
		}
		return media.NewSilentElement(sink, media.WithLogger(logger))
	}
	return media.NewElement(sink, media.WithLogger(logger))
}
