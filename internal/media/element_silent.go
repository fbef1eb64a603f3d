//go:build !((linux && cgo) || windows || darwin)

package media

import "github.com/tessro/cassette/internal/core"

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio on linux requires cgo for ALSA.
const AudioAvailable = false

// Element is the silent element in builds without audio output.
type Element = SilentElement

// NewElement creates a silent element that reports to sink.
func NewElement(sink core.MediaSink, opts ...Option) *Element {
	return NewSilentElement(sink, opts...)
}
