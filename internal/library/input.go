package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"

	cerrors "github.com/tessro/cassette/internal/errors"
)

// FileInput is one file offered for adding to the playlist.
type FileInput struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type,omitempty"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// FromPath describes the file at path.
func FromPath(path string) FileInput {
	in := FileInput{
		Name:     filepath.Base(path),
		MIMEType: MimeType(path),
		Path:     path,
	}
	if info, err := os.Stat(path); err == nil {
		in.Size = info.Size()
	}
	return in
}

// Accepted reports whether the input is playable audio.
func (f FileInput) Accepted() bool {
	return IsAccepted(f.Name, f.MIMEType)
}

// Filter splits inputs into accepted audio and rejections. Rejections wrap
// cerrors.ErrUnsupportedFile.
func Filter(inputs []FileInput) cerrors.PartialResult[[]FileInput] {
	accepted, rejected := lo.FilterReject(inputs, func(in FileInput, _ int) bool {
		return in.Accepted()
	})

	result := cerrors.PartialResult[[]FileInput]{Data: accepted}
	for _, in := range rejected {
		result.AddError(fmt.Errorf("%s: %w", in.Name, cerrors.ErrUnsupportedFile))
	}
	return result
}

// Scan expands paths into file inputs. Directories contribute their files in
// lexical order, descending into subdirectories only when recursive is set.
// Unsupported files are included; use Filter to drop them. A path that cannot
// be read is recorded as an error and the remaining paths are still scanned.
func Scan(paths []string, recursive bool) cerrors.PartialResult[[]FileInput] {
	var result cerrors.PartialResult[[]FileInput]
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			result.AddError(fmt.Errorf("failed to stat %s: %w", p, err))
			continue
		}
		if !info.IsDir() {
			result.Data = append(result.Data, FromPath(p))
			continue
		}

		found, err := scanDir(p, recursive)
		if err != nil {
			result.AddError(err)
			continue
		}
		result.Data = append(result.Data, found...)
	}
	return result
}

func scanDir(root string, recursive bool) ([]FileInput, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(files)
	return lo.Map(files, func(p string, _ int) FileInput { return FromPath(p) }), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
