package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/tessro/cassette/internal/core"
	"github.com/tessro/cassette/internal/library"
	"github.com/tessro/cassette/internal/media"
)

var (
	scanRecursive bool
	scanNoProbe   bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <paths...>",
	Short: "List the playable audio files under the given paths",
	Long: `Scan files and folders and show which ones can be added to a playlist,
with their size and duration.

Examples:
  cassette scan ~/Music
  cassette scan --no-probe *.mp3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVarP(&scanRecursive, "recursive", "r", true, "descend into subfolders")
	scanCmd.Flags().BoolVar(&scanNoProbe, "no-probe", false, "skip decoding files to find their duration")
	rootCmd.AddCommand(scanCmd)
}

// ScanEntry is one scanned file.
type ScanEntry struct {
	Path     string        `json:"path"`
	Name     string        `json:"name"`
	Size     int64         `json:"size"`
	Accepted bool          `json:"accepted"`
	Duration time.Duration `json:"duration,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	scanned := library.Scan(args, scanRecursive)
	if scanned.HasErrors() {
		if len(scanned.Data) == 0 {
			return errors.Join(scanned.Errors...)
		}
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), scanned.ErrorSummary())
	}
	files := scanned.Data

	var prober core.Prober
	if !scanNoProbe {
		prober = media.NewProber()
	}
	entries := scanEntries(cmd.Context(), files, prober)

	if JSONOutput() {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	printScan(entries)
	return nil
}

// scanEntries describes each file, probing accepted ones when prober is set.
func scanEntries(ctx context.Context, files []library.FileInput, prober core.Prober) []ScanEntry {
	entries := make([]ScanEntry, 0, len(files))
	for _, f := range files {
		e := ScanEntry{
			Path:     f.Path,
			Name:     library.DisplayName(f.Name),
			Size:     f.Size,
			Accepted: f.Accepted(),
		}
		if e.Accepted && prober != nil {
			e.Duration, e.Error = probeFile(ctx, prober, f.Path)
		}
		entries = append(entries, e)
	}
	return entries
}

func probeFile(ctx context.Context, prober core.Prober, path string) (time.Duration, string) {
	handle, err := library.NewLocalHandle(path)
	if err != nil {
		return 0, err.Error()
	}
	defer func() { _ = handle.Release() }()

	d, err := prober.Probe(ctx, handle)
	if err != nil {
		return 0, err.Error()
	}
	return d, ""
}

func printScan(entries []ScanEntry) {
	table := NewTable("NAME", "SIZE", "DURATION", "STATUS")
	var accepted int
	var total int64
	for _, e := range entries {
		status := "ok"
		duration := "-"
		switch {
		case !e.Accepted:
			status = "unsupported"
		case e.Error != "":
			status = TruncateString(e.Error, 40)
		case e.Duration > 0:
			duration = core.FormatDuration(e.Duration)
		}
		if e.Accepted {
			accepted++
			total += e.Size
		}
		table.Row(TruncateString(e.Name, 48), humanize.Bytes(uint64(e.Size)), duration, status)
	}
	table.Flush()

	fmt.Printf("\n%s playable (%s), %s skipped\n",
		english.Plural(accepted, "file", ""),
		humanize.Bytes(uint64(total)),
		english.Plural(len(entries)-accepted, "file", ""))
}
