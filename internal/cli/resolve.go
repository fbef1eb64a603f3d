package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/cassette/internal/core"
	cerrors "github.com/tessro/cassette/internal/errors"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <link>",
	Short: "Look up the preview behind a Spotify track link",
	Long: `Resolve a Spotify track link to its 30 second preview and print the
metadata a playlist entry would get.

Examples:
  cassette resolve https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC
  cassette resolve spotify:track:4uLU6hMCjMI75M1A2tKUQC --json`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	logger, closer, err := newLogger(true)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	r := newResolver(logger)
	if r == nil {
		return fmt.Errorf("%w: %w", cerrors.ErrResolveFailure, cerrors.ErrNotConfigured)
	}

	track, err := r.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if JSONOutput() {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(track)
	}

	out := cmd.OutOrStdout()
	Normal(out, "Name", track.Name)
	Normal(out, "Artist", track.Artist)
	Normal(out, "Duration", core.FormatDuration(track.Duration))
	Normal(out, "Preview", track.URL)
	return nil
}
