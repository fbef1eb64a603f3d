package wizard

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/tessro/cassette/internal/config"
)

// ConfigAnswers holds the raw form values for a configuration.
type ConfigAnswers struct {
	ClientID     string
	ClientSecret string
	Market       string
	SeekStep     string
	Volume       string
	Shuffle      bool
	Repeat       bool
	WatchDir     string
	Recursive    bool
	Theme        string
	LogLevel     string
}

// AnswersFrom pre-fills the form from cfg.
func AnswersFrom(cfg *config.Config) *ConfigAnswers {
	return &ConfigAnswers{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		Market:       cfg.Spotify.Market,
		SeekStep:     strconv.Itoa(cfg.Playback.SeekStep),
		Volume:       strconv.Itoa(cfg.Playback.Volume),
		Shuffle:      cfg.Playback.Shuffle,
		Repeat:       cfg.Playback.Repeat,
		WatchDir:     cfg.Library.WatchDir,
		Recursive:    cfg.Library.Recursive,
		Theme:        cfg.TUI.Theme,
		LogLevel:     cfg.Log.Level,
	}
}

// Apply copies the answers into cfg and validates the result.
func (a *ConfigAnswers) Apply(cfg *config.Config) error {
	seek, err := strconv.Atoi(strings.TrimSpace(a.SeekStep))
	if err != nil {
		return fmt.Errorf("seek step: %w", err)
	}
	volume, err := strconv.Atoi(strings.TrimSpace(a.Volume))
	if err != nil {
		return fmt.Errorf("volume: %w", err)
	}

	cfg.Spotify.ClientID = strings.TrimSpace(a.ClientID)
	cfg.Spotify.ClientSecret = strings.TrimSpace(a.ClientSecret)
	cfg.Spotify.Market = strings.ToUpper(strings.TrimSpace(a.Market))
	cfg.Playback.SeekStep = seek
	cfg.Playback.Volume = volume
	cfg.Playback.Shuffle = a.Shuffle
	cfg.Playback.Repeat = a.Repeat
	cfg.Library.WatchDir = strings.TrimSpace(a.WatchDir)
	cfg.Library.Recursive = a.Recursive
	cfg.TUI.Theme = a.Theme
	cfg.Log.Level = a.LogLevel

	return cfg.Validate()
}

func validateInt(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return errors.New("enter a whole number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

func validateDir(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	info, err := os.Stat(s)
	if err != nil {
		return errors.New("folder does not exist")
	}
	if !info.IsDir() {
		return errors.New("not a folder")
	}
	return nil
}

// ConfigForm builds the interactive configuration form bound to a.
func ConfigForm(a *ConfigAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Spotify").
				Description("Track links are resolved with a Spotify app's client credentials.\nLeave both empty to play local files only."),
			huh.NewInput().
				Title("Client ID").
				Value(&a.ClientID),
			huh.NewInput().
				Title("Client secret").
				EchoMode(huh.EchoModePassword).
				Value(&a.ClientSecret),
			huh.NewInput().
				Title("Market").
				Description("Two-letter country code used for preview availability").
				Value(&a.Market),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Seek step (seconds)").
				Validate(validateInt(1, 600)).
				Value(&a.SeekStep),
			huh.NewInput().
				Title("Volume (0-100)").
				Validate(validateInt(0, 100)).
				Value(&a.Volume),
			huh.NewConfirm().
				Title("Start with shuffle on?").
				Value(&a.Shuffle),
			huh.NewConfirm().
				Title("Start with repeat on?").
				Value(&a.Repeat),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Watched folder").
				Description("New audio files dropped here are added to the playlist").
				Validate(validateDir).
				Value(&a.WatchDir),
			huh.NewConfirm().
				Title("Watch subfolders too?").
				Value(&a.Recursive),
			huh.NewSelect[string]().
				Title("Theme").
				Options(huh.NewOptions("auto", "dark", "light")...).
				Value(&a.Theme),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&a.LogLevel),
		),
	)
}

// RunConfig asks for every setting, starting from cfg, and applies the
// answers to it.
func RunConfig(cfg *config.Config) error {
	answers := AnswersFrom(cfg)
	if err := ConfigForm(answers).Run(); err != nil {
		return fmt.Errorf("configuration cancelled: %w", err)
	}
	return answers.Apply(cfg)
}
