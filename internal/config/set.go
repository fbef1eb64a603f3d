package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	cerrors "github.com/tessro/cassette/internal/errors"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
)

var settable = map[string]valueKind{
	"spotify.client_id":     kindString,
	"spotify.client_secret": kindString,
	"spotify.market":        kindString,
	"playback.seek_step":    kindInt,
	"playback.shuffle":      kindBool,
	"playback.repeat":       kindBool,
	"playback.volume":       kindInt,
	"library.watch_dir":     kindString,
	"library.recursive":     kindBool,
	"tui.theme":             kindString,
	"tui.refresh_interval":  kindInt,
	"log.level":             kindString,
	"log.file":              kindString,
}

// Keys returns the keys accepted by Set, sorted.
func Keys() []string {
	keys := make([]string, 0, len(settable))
	for k := range settable {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set updates a single "section.field" value in the config file at path,
// preserving keys it does not know about. The result must still validate.
func Set(path, key, value string) error {
	kind, ok := settable[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", cerrors.ErrInvalidConfig, key)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", cerrors.ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return fmt.Errorf("%w: %w", cerrors.ErrInvalidConfig, err)
	}

	typed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", cerrors.ErrInvalidConfig, key, err)
	}

	section, field, _ := strings.Cut(key, ".")
	sectionMap, ok := raw[section].(map[string]any)
	if !ok {
		sectionMap = map[string]any{}
		raw[section] = sectionMap
	}
	sectionMap[field] = typed

	// Round-trip through the typed schema so bad values never reach disk.
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	cfg := Default()
	if _, err := toml.Decode(buf.String(), cfg); err != nil {
		return fmt.Errorf("%w: %w", cerrors.ErrInvalidConfig, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", cerrors.ErrInvalidConfig, err)
	}

	return Save(path, raw)
}

func parseValue(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer")
		}
		// TOML integers decode as int64.
		return int64(i), nil
	case kindBool:
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		}
		return nil, fmt.Errorf("value must be true or false")
	default:
		return value, nil
	}
}
