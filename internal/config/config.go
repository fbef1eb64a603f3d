package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	cerrors "github.com/tessro/cassette/internal/errors"
)

const header = "# Cassette Configuration\n\n"

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.cassetterc, $XDG_CONFIG_HOME/cassette/config.toml, ~/.config/cassette/config.toml
func Load() (*Config, error) {
	// Decoding over the defaults keeps them for keys the file omits.
	cfg := Default()

	if path := findConfigFile(); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", cerrors.ErrInvalidConfig, path, err)
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", cerrors.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", cerrors.ErrInvalidConfig, path, err)
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultPath returns the path used when creating a config file.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cassetterc"
	}
	return filepath.Join(home, ".cassetterc")
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".cassetterc"),
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "cassette", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Spotify
	if v := os.Getenv("CASSETTE_SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("CASSETTE_SPOTIFY_CLIENT_SECRET"); v != "" {
		cfg.Spotify.ClientSecret = v
	}
	if v := os.Getenv("CASSETTE_SPOTIFY_MARKET"); v != "" {
		cfg.Spotify.Market = v
	}

	// Playback
	if v := os.Getenv("CASSETTE_PLAYBACK_SEEK_STEP"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Playback.SeekStep = i
		}
	}
	if v := os.Getenv("CASSETTE_PLAYBACK_VOLUME"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Playback.Volume = i
		}
	}

	// Library
	if v := os.Getenv("CASSETTE_LIBRARY_WATCH_DIR"); v != "" {
		cfg.Library.WatchDir = v
	}

	// TUI
	if v := os.Getenv("CASSETTE_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}

	// Log
	if v := os.Getenv("CASSETTE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CASSETTE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

// Write encodes cfg as TOML with the standard header.
func Write(w io.Writer, cfg any) error {
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	encoder := toml.NewEncoder(w)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

// Save writes cfg to path, creating parent directories as needed.
func Save(path string, cfg any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	if err := Write(f, cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	return f.Close()
}
