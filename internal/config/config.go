package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Backend is the base URL of the streaming backend,
	// e.g. "https://music.example.com".
	Backend string `koanf:"backend"`
	// Token is an optional auth token. When empty, the persisted token
	// from the state database is used.
	Token string `koanf:"token"`
	// RateLimit caps backend requests per second. Zero keeps the client
	// default.
	RateLimit float64 `koanf:"rate_limit"`

	Playback PlaybackConfig `koanf:"playback"`
	Video    VideoConfig    `koanf:"video"`
	Theme    ThemeConfig    `koanf:"theme"`

	Radio []RadioStation `koanf:"radio"`
}

// PlaybackConfig holds playback behavior settings.
type PlaybackConfig struct {
	Autoplay *bool   `koanf:"autoplay"` // chain to the next track on end (default: true)
	Volume   float64 `koanf:"volume"`   // initial volume 0..1 (default: persisted or 1.0)
}

// VideoConfig holds settings for the external video player used for
// video-platform tracks.
type VideoConfig struct {
	MpvPath string `koanf:"mpv_path"` // mpv binary (default: "mpv" from PATH)
}

// ThemeConfig holds artwork theming settings.
type ThemeConfig struct {
	Enabled *bool `koanf:"enabled"` // extract colors from artwork (default: true)
}

// RadioStation is a configured live stream.
type RadioStation struct {
	Name string `koanf:"name"`
	URL  string `koanf:"url"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if v := os.Getenv("RIPPLE_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("RIPPLE_TOKEN"); v != "" {
		cfg.Token = v
	}

	if cfg.Backend == "" {
		return nil, fmt.Errorf("no backend configured: set backend in config.toml or RIPPLE_BACKEND")
	}
	cfg.Backend = strings.TrimSuffix(cfg.Backend, "/")

	if cfg.Playback.Volume < 0 || cfg.Playback.Volume > 1 {
		cfg.Playback.Volume = 0
	}
	if cfg.Video.MpvPath == "" {
		cfg.Video.MpvPath = "mpv"
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/ripple/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ripple", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

// AutoplayDefault returns the configured autoplay default, true when
// unset.
func (c *Config) AutoplayDefault() bool {
	if c.Playback.Autoplay == nil {
		return true
	}
	return *c.Playback.Autoplay
}

// ThemingEnabled returns whether artwork theming is on, true when unset.
func (c *Config) ThemingEnabled() bool {
	if c.Theme.Enabled == nil {
		return true
	}
	return *c.Theme.Enabled
}
