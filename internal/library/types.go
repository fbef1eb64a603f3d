// Package library turns files, folders and resolved links into playlist
// tracks.
package library

import (
	"path/filepath"
	"strings"
)

// AudioExtensions lists the accepted file extensions (lowercase, with dot).
var AudioExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".ogg": true,
	".m4a": true,
}

// audioMimeTypes maps accepted extensions to their MIME type.
var audioMimeTypes = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
	".ogg": "audio/ogg",
	".m4a": "audio/mp4",
}

// IsAccepted reports whether a file is playable audio, either by its
// extension or by an audio/ MIME type.
func IsAccepted(name, mimeType string) bool {
	if strings.HasPrefix(strings.ToLower(mimeType), "audio/") {
		return true
	}
	return AudioExtensions[strings.ToLower(filepath.Ext(name))]
}

// MimeType returns the MIME type for an accepted extension, or "".
func MimeType(name string) string {
	return audioMimeTypes[strings.ToLower(filepath.Ext(name))]
}

// DisplayName returns the base name with an accepted extension removed.
// Other extensions are kept.
func DisplayName(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	if AudioExtensions[strings.ToLower(ext)] {
		return strings.TrimSuffix(base, ext)
	}
	return base
}
