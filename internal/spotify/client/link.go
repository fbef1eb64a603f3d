package client

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidLink is returned for links that do not name a track.
var ErrInvalidLink = errors.New("not a spotify track link")

var trackIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,64}$`)

// ParseTrackLink extracts the track ID from
// https://open.spotify.com/track/<id> (optionally with an intl-xx segment
// and a query string) or spotify:track:<id>.
func ParseTrackLink(link string) (string, error) {
	link = strings.TrimSpace(link)

	if rest, ok := strings.CutPrefix(link, "spotify:track:"); ok {
		return checkID(link, rest)
	}

	raw := link
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidLink, link)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != "open.spotify.com" {
		return "", fmt.Errorf("%w: %s", ErrInvalidLink, link)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) > 0 && strings.HasPrefix(segments[0], "intl-") {
		segments = segments[1:]
	}
	if len(segments) != 2 || segments[0] != "track" {
		return "", fmt.Errorf("%w: %s", ErrInvalidLink, link)
	}
	return checkID(link, segments[1])
}

func checkID(link, id string) (string, error) {
	if !trackIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %s", ErrInvalidLink, link)
	}
	return id, nil
}
