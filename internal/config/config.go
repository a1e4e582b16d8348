// Package config loads and validates subshift configuration.
//
// Settings come from a TOML file (default ~/.config/subshift/config.toml);
// a missing file is not an error and yields Default(). Command-line flags
// override file values after Load returns.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Tools locates the external media binaries. Empty means search PATH.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg" validate:"omitempty,file"`
	FFprobe string `toml:"ffprobe" validate:"omitempty,file"`
}

// Convert holds defaults for the convert command.
type Convert struct {
	// Charset decodes subtitle input without a byte-order mark.
	Charset string `toml:"charset" validate:"charset"`
	// StrictSUB fails on malformed frame-coded lines instead of skipping.
	StrictSUB bool `toml:"strict_sub"`
}

type Logging struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

type Config struct {
	Tools   Tools   `toml:"tools"`
	Convert Convert `toml:"convert"`
	Logging Logging `toml:"logging"`
}

func Default() Config {
	return Config{
		Convert: Convert{Charset: "utf-8"},
		Logging: Logging{Level: "info"},
	}
}

// DefaultConfigPath returns the absolute path of the default config file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subshift/config.toml")
}

// Load reads path (or the default location when empty), applies defaults
// for unset values, and validates the result. It reports the resolved path
// and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if strings.TrimSpace(path) == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
	}

	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Tools.FFmpeg, err = expandPath(c.Tools.FFmpeg); err != nil {
		return err
	}
	if c.Tools.FFprobe, err = expandPath(c.Tools.FFprobe); err != nil {
		return err
	}
	c.Convert.Charset = strings.ToLower(strings.TrimSpace(c.Convert.Charset))
	if c.Convert.Charset == "" {
		c.Convert.Charset = "utf-8"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	return nil
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %s: %w", path, err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
