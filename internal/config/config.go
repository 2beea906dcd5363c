// Package config loads the analyzer settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by every command.
type Config struct {
	// LogDir is where relative log file patterns are resolved.
	LogDir string `yaml:"log_dir,omitempty"`
	// OutputDir receives exported result, log and details files.
	OutputDir string `yaml:"output_dir,omitempty"`
	Color     bool   `yaml:"color"`
	// Workers bounds how many log files are read at once.
	Workers int `yaml:"workers"`
	// GapThreshold marks pauses between signaling lines in the details view.
	GapThreshold time.Duration `yaml:"gap_threshold"`
	Encoding     string        `yaml:"encoding"`
	LogLevel     string        `yaml:"log_level"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		LogDir:       ".",
		OutputDir:    "output",
		Color:        true,
		Workers:      4,
		GapThreshold: 4 * time.Second,
		Encoding:     "auto",
		LogLevel:     "warn",
	}
}

// Path returns the default config file location.
func Path() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fslog", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fslog", "config.yaml")
}

// Load overlays the file at path on Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no command can work with.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.GapThreshold < 0 {
		return fmt.Errorf("gap_threshold must not be negative, got %s", c.GapThreshold)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// ResolveOutput returns OutputDir, relative to base when it is not absolute.
func (c Config) ResolveOutput(base string) string {
	if c.OutputDir == "" || filepath.IsAbs(c.OutputDir) {
		return c.OutputDir
	}
	return filepath.Join(base, c.OutputDir)
}
