// Package config loads the tool's settings: baked-in defaults, overlaid
// by the JSON config file, overlaid by JIRA_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Settings holds the connection and behavior settings. User may be empty,
// in which case Token is sent as a bearer credential instead of a basic
// auth password.
type Settings struct {
	BaseURL     string `json:"base_url" envconfig:"BASE_URL"`
	User        string `json:"user" envconfig:"USER"`
	Token       string `json:"token" envconfig:"TOKEN"`
	DownloadDir string `json:"download_dir" envconfig:"DOWNLOAD_DIR"`
	LogLevel    string `json:"log_level" envconfig:"LOG_LEVEL"`
}

// DefaultSettings returns a new Settings instance with the baseline
// values. An empty DownloadDir means downloads land under the working
// directory.
func DefaultSettings() *Settings {
	return &Settings{
		LogLevel: "info",
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "attache", "config.json"), nil
}

// Load reads settings from path and overlays JIRA_* environment
// variables. A missing file is not an error; the defaults carry.
func Load(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	if err := envconfig.Process("jira", s); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return s, nil
}

// Save writes settings to path atomically.
func Save(path string, s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// The file holds a credential.
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}

// SlogLevel maps the configured level onto slog's scale. Unrecognized
// values fall back to info.
func (s *Settings) SlogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
