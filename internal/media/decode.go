// Package media plays tracks on the system audio output using beep.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/tessro/cassette/internal/core"
	cerrors "github.com/tessro/cassette/internal/errors"
)

// Format is an audio container cassette knows about.
type Format string

const (
	FormatMP3     Format = "mp3"
	FormatWAV     Format = "wav"
	FormatVorbis  Format = "ogg"
	FormatMP4     Format = "m4a"
	FormatUnknown Format = ""
)

// FormatFromURI guesses the format from a path or URL extension.
func FormatFromURI(uri string) Format {
	p := uri
	if u, err := url.Parse(uri); err == nil && u.Scheme != "" && u.Host != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".mp3":
		return FormatMP3
	case ".wav":
		return FormatWAV
	case ".ogg":
		return FormatVorbis
	case ".m4a":
		return FormatMP4
	default:
		return FormatUnknown
	}
}

// Sniff identifies the format from the first bytes of the data.
func Sniff(data []byte) Format {
	switch {
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV
	case len(data) >= 4 && string(data[:4]) == "OggS":
		return FormatVorbis
	case len(data) >= 8 && string(data[4:8]) == "ftyp":
		return FormatMP4
	case len(data) >= 3 && string(data[:3]) == "ID3":
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	default:
		return FormatUnknown
	}
}

// CheckPlayable fails early for formats that can never be decoded.
func CheckPlayable(uri string) error {
	if FormatFromURI(uri) == FormatMP4 {
		return fmt.Errorf("%s: %w", uri, cerrors.ErrUnsupportedFormat)
	}
	return nil
}

// Decode decodes in-memory audio. The extension of uri picks the decoder;
// when it has none the content is sniffed. The returned streamer seeks
// within data.
func Decode(data []byte, uri string) (beep.StreamSeekCloser, beep.Format, error) {
	format := FormatFromURI(uri)
	if format == FormatUnknown {
		format = Sniff(data)
	}

	rc := nopCloser{bytes.NewReader(data)}
	var (
		s   beep.StreamSeekCloser
		f   beep.Format
		err error
	)
	switch format {
	case FormatMP3, FormatUnknown:
		// Streaming previews are mp3 and often have no extension.
		s, f, err = mp3.Decode(rc)
	case FormatWAV:
		s, f, err = wav.Decode(rc)
	case FormatVorbis:
		s, f, err = vorbis.Decode(rc)
	default:
		return nil, beep.Format{}, fmt.Errorf("%s: %w", uri, cerrors.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", uri, err)
	}
	return s, f, nil
}

// readAll fetches the whole encoded source into memory so decoders can seek.
func readAll(ctx context.Context, loc core.Locator) ([]byte, error) {
	rc, err := loc.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", loc.URI(), err)
	}
	return data, nil
}

// nopCloser wraps a bytes.Reader to implement io.ReadCloser.
type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
