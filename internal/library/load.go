package library

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tessro/cassette/internal/core"
	cerrors "github.com/tessro/cassette/internal/errors"
)

// LoadFiles creates local tracks for the accepted inputs. Unsupported and
// unreadable files are reported in the result and skipped.
func LoadFiles(ctx context.Context, inputs []FileInput) cerrors.PartialResult[[]*core.Track] {
	filtered := Filter(inputs)
	result := cerrors.PartialResult[[]*core.Track]{Errors: filtered.Errors}

	for _, in := range filtered.Data {
		if err := ctx.Err(); err != nil {
			result.AddError(err)
			break
		}

		handle, err := NewLocalHandle(in.Path)
		if err != nil {
			result.AddError(err)
			continue
		}
		result.Data = append(result.Data, core.NewTrack(DisplayName(in.Name), handle, core.SourceLocal))
	}
	return result
}

// NewRemoteTrack creates a streaming track from resolver output. The display
// name is "<name> - <artist>".
func NewRemoteTrack(resolved *core.ResolvedTrack, source core.Source, client *http.Client) *core.Track {
	name := resolved.Name
	if resolved.Artist != "" {
		name = fmt.Sprintf("%s - %s", resolved.Name, resolved.Artist)
	}
	t := core.NewTrack(name, NewRemoteHandle(resolved.URL, client), source)
	t.Artist = resolved.Artist
	t.SetDuration(resolved.Duration)
	return t
}
