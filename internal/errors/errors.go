package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrInvalidIndex       = errors.New("invalid playlist index")
	ErrUnsupportedFile    = errors.New("unsupported file type")
	ErrResolveFailure     = errors.New("could not resolve track link")
	ErrEmptyPlaylist      = errors.New("playlist is empty")
	ErrNotConfigured      = errors.New("spotify not configured")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrRateLimited        = errors.New("rate limited")
	ErrNetworkError       = errors.New("network error")
	ErrTimeout            = errors.New("request timeout")
	ErrConfigNotFound     = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrAudioUnavailable   = errors.New("audio output unavailable")
	ErrUnsupportedFormat  = errors.New("unsupported audio format")
	ErrNoPreviewAvailable = errors.New("no preview available for this track")
)

// CassetteError wraps an error with a user-friendly suggestion.
type CassetteError struct {
	Err        error
	Suggestion string
}

func (e *CassetteError) Error() string {
	return e.Err.Error()
}

func (e *CassetteError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &CassetteError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var cErr *CassetteError
	if errors.As(err, &cErr) && cErr.Suggestion != "" {
		return cErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrNotAuthenticated) ||
		strings.Contains(errStr, "invalid client") {
		return "Set spotify.client_id and spotify.client_secret in ~/.cassetterc or via CASSETTE_SPOTIFY_CLIENT_ID / CASSETTE_SPOTIFY_CLIENT_SECRET"
	}

	if errors.Is(err, ErrNoPreviewAvailable) {
		return "Spotify only exposes 30 second previews; pick a track that has one"
	}

	if errors.Is(err, ErrUnsupportedFile) {
		return "Supported files are .mp3, .wav, .ogg and .m4a"
	}

	if errors.Is(err, ErrUnsupportedFormat) {
		return "This build can decode mp3, wav and ogg audio"
	}

	if errors.Is(err, ErrAudioUnavailable) {
		return "Audio output needs a cgo-enabled build"
	}

	if errors.Is(err, ErrRateLimited) || strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") {
		return "Too many requests. Wait a moment and try again"
	}

	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check your internet connection and try again"
	}

	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) {
		return "Run 'cassette config init' to create a configuration file"
	}

	if errors.Is(err, ErrResolveFailure) {
		return "Use a link like https://open.spotify.com/track/<id> or spotify:track:<id>"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
