package library

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultSettle is how long a new file must stay quiet before it is offered.
const DefaultSettle = 500 * time.Millisecond

// Watcher offers audio files that appear in a folder while cassette runs.
type Watcher struct {
	dir       string
	recursive bool
	settle    time.Duration
	logger    zerolog.Logger

	fs   *fsnotify.Watcher
	seen map[string]bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithSettle sets the quiet period before a new file is offered.
func WithSettle(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithRecursive also watches subdirectories, including ones created later.
func WithRecursive(recursive bool) WatcherOption {
	return func(w *Watcher) {
		w.recursive = recursive
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher starts watching dir. Files already present are not offered.
func NewWatcher(dir string, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		dir:    dir,
		settle: DefaultSettle,
		logger: zerolog.Nop(),
		seen:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w.fs = fw

	if err := w.addTree(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	if !w.recursive {
		if err := w.fs.Add(root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Run delivers batches of newly settled audio files to emit until ctx is
// cancelled. It closes the underlying watcher on return.
func (w *Watcher) Run(ctx context.Context, emit func([]FileInput)) error {
	defer w.fs.Close()

	pending := make(map[string]bool)
	timer := time.NewTimer(w.settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if w.recursive && event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := w.addTree(event.Name); err != nil {
					w.logger.Warn().Err(err).Str("dir", event.Name).Msg("watch subdirectory")
				}
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if w.seen[event.Name] || !IsAccepted(event.Name, "") {
				continue
			}
			pending[event.Name] = true
			timer.Reset(w.settle)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watcher error")

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
				w.seen[p] = true
			}
			clear(pending)
			sort.Strings(paths)

			inputs := make([]FileInput, len(paths))
			for i, p := range paths {
				inputs[i] = FromPath(p)
			}
			w.logger.Debug().Int("count", len(inputs)).Str("dir", w.dir).Msg("new audio files")
			emit(inputs)
		}
	}
}
