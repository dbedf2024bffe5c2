package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Tracking
	DefaultHot  bool   `yaml:"default_hot" env:"PLUM_DEFAULT_HOT"`
	DefaultSync string `yaml:"default_sync" env:"PLUM_DEFAULT_SYNC"` // "cold" or "hot"

	// Watcher
	WatchDebounceMS int      `yaml:"watch_debounce_ms" env:"PLUM_WATCH_DEBOUNCE_MS"`
	SyncOnStart     bool     `yaml:"sync_on_start" env:"PLUM_SYNC_ON_START"`
	IgnorePatterns  []string `yaml:"ignore_patterns" env:"PLUM_IGNORE_PATTERNS"`

	// History
	HistoryLimit int `yaml:"history_limit" env:"PLUM_HISTORY_LIMIT"`

	// UI Settings
	ColorTheme      string `yaml:"color_theme" env:"PLUM_COLOR_THEME"`
	TimestampFormat string `yaml:"timestamp_format" env:"PLUM_TIMESTAMP_FORMAT"`
	Editor          string `yaml:"editor" env:"PLUM_EDITOR"`

	// Diagnostics
	LogLevel string `yaml:"log_level" env:"PLUM_LOG_LEVEL"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		DefaultHot:      false,
		DefaultSync:     "cold",
		WatchDebounceMS: 200,
		SyncOnStart:     true,
		IgnorePatterns:  []string{".*", "*~", "*.swp", "*.tmp", "#*#"},
		HistoryLimit:    20,
		ColorTheme:      "auto",
		TimestampFormat: "2006-01-02 15:04:05",
		Editor:          "",
		LogLevel:        "warn",
	}
}

// Load reads configuration from the specified file path, then applies
// PLUM_* environment overrides
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// Apply defaults for essential values if missing
	if cfg.WatchDebounceMS <= 0 {
		cfg.WatchDebounceMS = 200
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = "2006-01-02 15:04:05"
	}
	if cfg.ColorTheme == "" {
		cfg.ColorTheme = "auto"
	}
	if !isValidSyncMode(cfg.DefaultSync) {
		cfg.DefaultSync = "cold"
	}

	return cfg, nil
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to warn
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func isValidSyncMode(mode string) bool {
	return mode == "cold" || mode == "hot"
}
