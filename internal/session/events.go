package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/samber/lo"

	"github.com/tessro/cassette/internal/core"
	cerrors "github.com/tessro/cassette/internal/errors"
	"github.com/tessro/cassette/internal/library"
)

// Event is anything the session reacts to.
type Event interface {
	event()
}

// MediaEvent wraps a notification from the media element.
type MediaEvent struct {
	core.MediaEvent
}

// ResolvedEvent is the completion of a link resolution.
type ResolvedEvent struct {
	Link   string
	Result *core.ResolvedTrack
	Err    error
}

// ProbedEvent is the completion of a duration probe. Track is the probed
// track itself, which may no longer be in the playlist.
type ProbedEvent struct {
	Track    *core.Track
	Duration time.Duration
	Err      error
}

// FilesEvent offers files to add, from the command line, the add prompt or a
// watched folder.
type FilesEvent struct {
	Files []library.FileInput
}

// TracksEvent carries tracks created off-loop from files.
type TracksEvent struct {
	Tracks []*core.Track
	Errors []error
}

// CommandEvent is a user command.
type CommandEvent struct {
	Command Command
}

func (MediaEvent) event()    {}
func (ResolvedEvent) event() {}
func (ProbedEvent) event()   {}
func (FilesEvent) event()    {}
func (TracksEvent) event()   {}
func (CommandEvent) event()  {}

// Job is blocking work started by Handle. It runs off the session goroutine
// and its result is fed back into Handle. A nil result is dropped.
type Job func(ctx context.Context) Event

// Notice is what Handle reports back to the user interface.
type Notice struct {
	// Message is informational text, e.g. "Added 3 tracks".
	Message string
	// Err is a failure to show the user. State is unchanged by failed
	// resolves and unsupported files.
	Err error
	// Jobs must be started by the caller.
	Jobs []Job
	// Quit asks the caller to stop.
	Quit bool
}

// Handle applies one event to the session. It never blocks; slow work is
// returned as jobs.
func (s *Session) Handle(ctx context.Context, ev Event) Notice {
	switch ev := ev.(type) {
	case MediaEvent:
		return s.handleMedia(ctx, ev.MediaEvent)
	case ResolvedEvent:
		return s.handleResolved(ctx, ev)
	case ProbedEvent:
		if ev.Err != nil {
			s.logger.Debug().Err(ev.Err).Str("track", ev.Track.Name).Msg("probe failed")
			return Notice{}
		}
		ev.Track.SetDuration(ev.Duration)
		return Notice{}
	case FilesEvent:
		return Notice{Jobs: []Job{LoadFilesJob(ev.Files)}}
	case TracksEvent:
		return s.handleTracks(ctx, ev)
	case CommandEvent:
		return s.Execute(ctx, ev.Command)
	default:
		s.logger.Warn().Str("type", fmt.Sprintf("%T", ev)).Msg("unhandled event")
		return Notice{}
	}
}

func (s *Session) handleMedia(ctx context.Context, ev core.MediaEvent) Notice {
	if ev.Generation != s.generation {
		s.logger.Debug().
			Stringer("kind", ev.Kind).
			Uint64("generation", ev.Generation).
			Uint64("current", s.generation).
			Msg("dropping stale media event")
		return Notice{}
	}

	switch ev.Kind {
	case core.MediaEnded:
		return s.notice(s.OnTrackEnded(ctx))
	case core.MediaMetadataLoaded:
		if t := s.Current(); t != nil {
			t.SetDuration(ev.Duration)
		}
	case core.MediaError:
		s.state.IsPlaying = false
		s.lastErr = ev.Err
		return Notice{Err: ev.Err}
	}
	return Notice{}
}

func (s *Session) handleResolved(ctx context.Context, ev ResolvedEvent) Notice {
	if ev.Err != nil {
		return Notice{Err: ev.Err}
	}
	track := library.NewRemoteTrack(ev.Result, core.SourceSpotify, s.httpClient)
	n := s.notice(s.AddTracks(ctx, track))
	if n.Err == nil {
		n.Message = fmt.Sprintf("Added %s", track.Name)
	}
	if s.prober != nil {
		n.Jobs = append(n.Jobs, ProbeJob(s.prober, track))
	}
	return n
}

func (s *Session) handleTracks(ctx context.Context, ev TracksEvent) Notice {
	unsupported, failed := lo.FilterReject(ev.Errors, func(err error, _ int) bool {
		return errors.Is(err, cerrors.ErrUnsupportedFile)
	})
	for _, err := range unsupported {
		s.logger.Debug().Err(err).Msg("skipped file")
	}

	n := s.notice(s.AddTracks(ctx, ev.Tracks...))
	n.Err = errors.Join(n.Err, errors.Join(failed...))
	if len(ev.Tracks) > 0 {
		n.Message = "Added " + english.Plural(len(ev.Tracks), "track", "")
	}
	if len(unsupported) > 0 {
		skipped := "skipped " + english.Plural(len(unsupported), "file", "")
		if n.Message == "" {
			n.Message = strings.ToUpper(skipped[:1]) + skipped[1:]
		} else {
			n.Message += ", " + skipped
		}
	}

	if s.prober != nil {
		pending := lo.Filter(ev.Tracks, func(t *core.Track, _ int) bool {
			return !t.HasDuration()
		})
		n.Jobs = lo.Map(pending, func(t *core.Track, _ int) Job {
			return ProbeJob(s.prober, t)
		})
	}
	return n
}

// notice turns a controller error into a Notice. Index errors stay inside
// the session.
func (s *Session) notice(err error) Notice {
	if err == nil {
		return Notice{}
	}
	if errors.Is(err, cerrors.ErrInvalidIndex) {
		s.logger.Debug().Err(err).Msg("ignored")
		return Notice{}
	}
	s.logger.Warn().Err(err).Msg("playback")
	return Notice{Err: err}
}

// ResolveJob resolves link off-loop.
func ResolveJob(r core.Resolver, link string) Job {
	return func(ctx context.Context) Event {
		result, err := r.Resolve(ctx, link)
		return ResolvedEvent{Link: link, Result: result, Err: err}
	}
}

// ProbeJob discovers the duration of t off-loop.
func ProbeJob(p core.Prober, t *core.Track) Job {
	return func(ctx context.Context) Event {
		d, err := p.Probe(ctx, t.Locator)
		return ProbedEvent{Track: t, Duration: d, Err: err}
	}
}

// LoadFilesJob reads accepted files into tracks off-loop.
func LoadFilesJob(files []library.FileInput) Job {
	return func(ctx context.Context) Event {
		result := library.LoadFiles(ctx, files)
		return TracksEvent{Tracks: result.Data, Errors: result.Errors}
	}
}

// ScanJob expands paths (files or folders) and loads the accepted files.
func ScanJob(paths []string, recursive bool) Job {
	return func(ctx context.Context) Event {
		scanned := library.Scan(paths, recursive)
		result := library.LoadFiles(ctx, scanned.Data)
		return TracksEvent{Tracks: result.Data, Errors: append(scanned.Errors, result.Errors...)}
	}
}
