package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize/english"

	"github.com/tessro/cassette/internal/session"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji:     true,
		showTimestamp: false,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	// Timestamp
	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	// Emoji
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	// Event description
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
	}

	if e.Current != nil {
		if t := e.Current.Current; t != nil {
			data.Name = t.Name
			data.Artist = t.Artist
			data.Source = string(t.Source)
		}
		data.Position = e.Current.State.CurrentIndex + 1
		data.Total = len(e.Current.Entries)
		data.Volume = e.Current.Volume
		data.Info = e.Current.Info
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	Name      string
	Artist    string
	Source    string
	Position  int
	Total     int
	Volume    int
	Info      string
}

func trackName(s *session.Snapshot) string {
	if s == nil || s.Current == nil {
		return ""
	}
	return s.Current.Name
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	switch e.Type {
	case EventTrackChange:
		if name := trackName(e.Current); name != "" {
			return fmt.Sprintf("Now playing: %s (%s)", name, e.Current.Info)
		}
		return "Track changed"

	case EventTrackComplete:
		if name := trackName(e.Previous); name != "" {
			return fmt.Sprintf("Finished: %s", name)
		}
		return "Track completed"

	case EventTrackSkip:
		if name := trackName(e.Previous); name != "" {
			return fmt.Sprintf("Skipped: %s", name)
		}
		return "Track skipped"

	case EventPause:
		return "Paused"

	case EventResume:
		return "Resumed"

	case EventVolumeChange:
		if e.Current != nil {
			return fmt.Sprintf("Volume: %d%%", e.Current.Volume)
		}
		return "Volume changed"

	case EventRepeatChange:
		if e.Current != nil {
			return "Repeat " + onOff(e.Current.State.IsRepeating)
		}
		return "Repeat changed"

	case EventShuffleChange:
		if e.Current != nil {
			return "Shuffle " + onOff(e.Current.State.IsShuffling)
		}
		return "Shuffle changed"

	case EventPlaylistChange:
		if e.Current != nil {
			return fmt.Sprintf("Playlist: %s", english.Plural(len(e.Current.Entries), "track", ""))
		}
		return "Playlist changed"

	default:
		return "Unknown event"
	}
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventTrackChange:
		return "🎵"
	case EventTrackComplete:
		return "✅"
	case EventTrackSkip:
		return "⏭️"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventVolumeChange:
		return "🔊"
	case EventRepeatChange:
		return "🔁"
	case EventShuffleChange:
		return "🔀"
	case EventPlaylistChange:
		return "📋"
	default:
		return "❓"
	}
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventTrackChange:
		return "track_change"
	case EventTrackComplete:
		return "track_complete"
	case EventTrackSkip:
		return "track_skip"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventVolumeChange:
		return "volume_change"
	case EventRepeatChange:
		return "repeat_change"
	case EventShuffleChange:
		return "shuffle_change"
	case EventPlaylistChange:
		return "playlist_change"
	default:
		return "unknown"
	}
}

// String returns the snake_case name of the event type.
func (t EventType) String() string {
	return eventTypeName(t)
}
