package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tessro/cassette/internal/library"
	"github.com/tessro/cassette/internal/media"
	"github.com/tessro/cassette/internal/session"
	"github.com/tessro/cassette/internal/tui"
	"github.com/tessro/cassette/internal/wizard"
)

var (
	playHeadless  bool
	playShuffle   bool
	playRepeat    bool
	playWatch     string
	playRecursive bool
	playSilent    bool
	playNoEmoji   bool
	playTimestamp bool
	playFormat    string
)

var playCmd = &cobra.Command{
	Use:   "play [files|folders|links...]",
	Short: "Start a playlist session",
	Long: `Start a playlist session with the given files, folders and Spotify track links.

With a terminal attached this opens the dashboard. Otherwise, or with --headless,
commands are read line by line from stdin and playback events are printed.

Examples:
  cassette play ~/Music/album
  cassette play song.mp3 https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC
  cassette play --shuffle --watch ~/Downloads
  echo "play" | cassette play --headless intro.wav`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playHeadless, "headless", false, "read commands from stdin instead of opening the dashboard")
	playCmd.Flags().BoolVar(&playShuffle, "shuffle", false, "start with shuffle on")
	playCmd.Flags().BoolVar(&playRepeat, "repeat", false, "start with repeat on")
	playCmd.Flags().StringVarP(&playWatch, "watch", "w", "", "add new audio files dropped into this folder")
	playCmd.Flags().BoolVarP(&playRecursive, "recursive", "r", false, "also watch subfolders")
	playCmd.Flags().BoolVar(&playSilent, "silent", false, "simulate playback without audio output")
	playCmd.Flags().BoolVar(&playNoEmoji, "no-emoji", false, "disable emoji in headless output")
	playCmd.Flags().BoolVarP(&playTimestamp, "timestamp", "t", false, "show timestamps in headless output")
	playCmd.Flags().StringVarP(&playFormat, "format", "f", "", "custom event template for headless output")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := !playHeadless && !JSONOutput() && wizard.CanInteract()

	logger, closer, err := newLogger(!interactive)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	loop := session.NewLoop(64)
	defer loop.Stop()

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithSeekStep(cfg.Playback.SeekStepDuration()),
		session.WithVolume(cfg.Playback.Volume),
		session.WithProber(media.NewProber()),
	}
	if r := newResolver(logger); r != nil {
		opts = append(opts, session.WithResolver(r))
	}
	sess := session.New(newMediaElement(loop.MediaSink(), playSilent, logger), opts...)

	sess.SetRepeating(cfg.Playback.Repeat || playRepeat)
	if cfg.Playback.Shuffle || playShuffle {
		// Nothing is loaded yet; this only sets the mode.
		if err := sess.SetShuffling(ctx, true); err != nil {
			return err
		}
	}

	var initial []session.Event
	if len(args) > 0 {
		add := session.Cmd(session.CmdAdd)
		add.Args = args
		initial = append(initial, session.CommandEvent{Command: add})
	}

	if err := startWatcher(ctx, loop, logger); err != nil {
		return err
	}

	if interactive {
		return tui.Run(ctx, sess, loop, tui.Options{
			RefreshRate: cfg.TUI.RefreshDuration(),
			Theme:       cfg.TUI.Theme,
			Initial:     initial,
		})
	}

	h := newHeadless(sess, loop, cmd.OutOrStdout(), JSONOutput())
	err = h.Run(ctx, cmd.InOrStdin(), initial)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// startWatcher feeds files dropped into the watched folder into the loop.
func startWatcher(ctx context.Context, loop *session.Loop, logger zerolog.Logger) error {
	dir := playWatch
	if dir == "" {
		dir = cfg.Library.WatchDir
	}
	if dir == "" {
		return nil
	}

	w, err := library.NewWatcher(dir,
		library.WithRecursive(playRecursive || cfg.Library.Recursive),
		library.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go func() {
		_ = w.Run(ctx, func(files []library.FileInput) {
			loop.Post(session.FilesEvent{Files: files})
		})
	}()
	return nil
}
