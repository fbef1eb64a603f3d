// Package auth obtains app-level Spotify access tokens with the client
// credentials flow.
package auth

import "strings"

// SpotifyTokenURL is the Spotify token endpoint.
const SpotifyTokenURL = "https://accounts.spotify.com/api/token"

// Credentials identify the cassette application to Spotify.
type Credentials struct {
	ClientID     string
	ClientSecret string
	// TokenURL overrides SpotifyTokenURL.
	TokenURL string
}

// Configured returns true if both the client ID and secret are set.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.ClientSecret) != ""
}

func (c Credentials) tokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return SpotifyTokenURL
}
