package config

import (
	"fmt"
	"path/filepath"
)

// Settings binds a loaded configuration to the file it came from.
// Callers read the resolved install directory once per invocation and pass it
// down explicitly; nothing here is package-level state.
type Settings struct {
	path string
	cfg  *Config
}

// Open loads the settings stored at path, or the defaults when the file does not exist.
func Open(path string) (*Settings, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	return &Settings{path: filepath.Clean(path), cfg: cfg}, nil
}

// Path returns the settings file location.
func (s *Settings) Path() string {
	return s.path
}

// InstallDirectory returns the install directory with "~" expanded.
func (s *Settings) InstallDirectory() (string, error) {
	return ExpandPath(s.cfg.InstallDir)
}

// SetInstallDirectory persists a new install directory.
func (s *Settings) SetInstallDirectory(dir string) error {
	absolute, err := ExpandPath(dir)
	if err != nil {
		return err
	}

	if absolute, err = filepath.Abs(absolute); err != nil {
		return fmt.Errorf("resolve install directory: %w", err)
	}

	updated := *s.cfg
	updated.InstallDir = absolute

	if err = Save(s.path, &updated); err != nil {
		return err
	}

	s.cfg = &updated

	return nil
}

// FeedURL returns the base URL of the release feed.
func (s *Settings) FeedURL() string {
	return s.cfg.FeedURL
}

// LogLevel returns the configured log level, possibly empty.
func (s *Settings) LogLevel() string {
	return s.cfg.LogLevel
}
