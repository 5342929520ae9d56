package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the persisted application configuration. Unlike the constants
// in this package, these values are user-editable and live in a YAML file
// under the user's config directory.
type Settings struct {
	// SourceMode selects the contact source: SourceModeLocal or SourceModeWeb.
	SourceMode string `yaml:"source_mode"`

	// LocalPath is the absolute path to a .vcf file (local mode).
	LocalPath string `yaml:"local_path,omitempty"`

	// WebURL is the CardDAV/WebDAV address serving vCards (web mode).
	WebURL string `yaml:"web_url,omitempty"`

	// WebUser is the HTTP Basic Auth username. The password is never stored
	// here; it lives in the system keyring under KeyringService.
	WebUser string `yaml:"web_user,omitempty"`

	// ServerPort is the localhost port the ICS feed is served on.
	ServerPort string `yaml:"server_port"`

	// Language is the ISO 639-1 code used for event summaries.
	Language string `yaml:"language"`

	// ReminderTrigger is an ISO8601 duration for VALARM triggers (e.g. "-P1D").
	// Empty disables reminders.
	ReminderTrigger string `yaml:"reminder_trigger,omitempty"`

	// StorePath is the SQLite database location. Empty means the default
	// file in the user data directory.
	StorePath string `yaml:"store_path,omitempty"`

	// Holidays maps a holiday name to its calendar date ("2006-01-02" or
	// "--01-02"). Each entry becomes one import candidate per sync.
	Holidays map[string]string `yaml:"holidays,omitempty"`

	// Custom maps a user-curated event name to its calendar date.
	Custom map[string]string `yaml:"custom,omitempty"`
}

// DefaultSettings returns the in-memory defaults used on first run.
func DefaultSettings() *Settings {
	return &Settings{
		SourceMode: SourceModeLocal,
		ServerPort: DefaultPort,
		Language:   DefaultLanguage,
		Holidays:   map[string]string{},
		Custom:     map[string]string{},
	}
}

// Normalize fills in missing/zero values so partially-filled settings files
// from older versions still behave correctly.
func (s *Settings) Normalize() {
	switch s.SourceMode {
	case SourceModeLocal, SourceModeWeb:
	default:
		s.SourceMode = SourceModeLocal
	}
	if s.ServerPort == "" {
		s.ServerPort = DefaultPort
	}
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
	if s.Holidays == nil {
		s.Holidays = map[string]string{}
	}
	if s.Custom == nil {
		s.Custom = map[string]string{}
	}
}

// LoadSettings reads settings from the given YAML path. A missing file is
// treated as a first run: defaults are written out and returned.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		return nil, errors.New(ErrSettingsPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s := DefaultSettings()
			if err := SaveSettings(path, s); err != nil {
				return s, err
			}
			return s, nil
		}
		return nil, err
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsParse, err)
	}
	s.Normalize()

	return &s, nil
}

// SaveSettings writes the settings atomically (temp file + rename) with
// owner-only permissions.
func SaveSettings(path string, s *Settings) error {
	if path == "" {
		return errors.New(ErrSettingsPath)
	}
	s.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermUserRWX); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".datedots-settings-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, FilePermUserRW); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// DefaultSettingsPath returns the settings file location in the user's
// config directory, creating the parent directory if needed.
func DefaultSettingsPath() (string, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrDataDir, err)
	}
	appDir := filepath.Join(cfgDir, AppID)
	if err := os.MkdirAll(appDir, DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", ErrCreateDir, err)
	}
	return filepath.Join(appDir, SettingsFileName), nil
}

// DefaultStorePath returns the SQLite database location in the user's
// config directory.
func DefaultStorePath() (string, error) {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrDataDir, err)
	}
	appDir := filepath.Join(cfgDir, AppID)
	if err := os.MkdirAll(appDir, DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", ErrCreateDir, err)
	}
	return filepath.Join(appDir, StoreFileName), nil
}
