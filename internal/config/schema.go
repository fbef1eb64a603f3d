package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Spotify  SpotifyConfig  `toml:"spotify" json:"spotify"`
	Playback PlaybackConfig `toml:"playback" json:"playback"`
	Library  LibraryConfig  `toml:"library" json:"library"`
	TUI      TUIConfig      `toml:"tui" json:"tui"`
	Log      LogConfig      `toml:"log" json:"log"`
}

// SpotifyConfig holds Spotify Web API credentials for resolving track links.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id" json:"client_id"`
	ClientSecret string `toml:"client_secret" json:"client_secret,omitempty"`
	Market       string `toml:"market" json:"market,omitempty"`
}

// Configured returns true if both credentials are set.
func (c SpotifyConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// PlaybackConfig holds the initial playback settings of a session.
type PlaybackConfig struct {
	SeekStep int  `toml:"seek_step" json:"seek_step"` // seconds
	Shuffle  bool `toml:"shuffle" json:"shuffle"`
	Repeat   bool `toml:"repeat" json:"repeat"`
	Volume   int  `toml:"volume" json:"volume"`
}

// SeekStepDuration returns the seek step as a duration.
func (c PlaybackConfig) SeekStepDuration() time.Duration {
	return time.Duration(c.SeekStep) * time.Second
}

// LibraryConfig holds settings for the watched folder.
type LibraryConfig struct {
	WatchDir  string `toml:"watch_dir" json:"watch_dir,omitempty"`
	Recursive bool   `toml:"recursive" json:"recursive"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme" json:"theme"`
	RefreshInterval int    `toml:"refresh_interval" json:"refresh_interval"` // milliseconds
}

// RefreshDuration returns the refresh interval as a duration.
func (c TUIConfig) RefreshDuration() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Millisecond
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file,omitempty"`
}
