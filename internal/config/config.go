package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	goupdate "github.com/doitdistributed/go-update"
	"gopkg.in/yaml.v3"
)

// Config holds the persisted protonup settings.
type Config struct {
	// InstallDir is where compatibility tool directories are created. May start with "~".
	InstallDir string `yaml:"install_dir"`
	// FeedURL is the base URL of the release feed.
	FeedURL string `yaml:"feed_url,omitempty"`
	// LogLevel is the default diagnostic log level.
	LogLevel string `yaml:"log_level,omitempty"`
}

const (
	// AppDirName is the directory under the XDG config home holding the settings file.
	AppDirName = "protonup"

	// DefaultConfigFilename is the settings file name.
	DefaultConfigFilename = "config.yaml"

	// DefaultInstallDir is where Steam looks for custom compatibility tools.
	DefaultInstallDir = "~/.steam/root/compatibilitytools.d"

	// DefaultFeedURL is the GloriousEggroll release feed.
	DefaultFeedURL = "https://api.github.com/repos/GloriousEggroll/proton-ge-custom/releases"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// defaultDirPermissions is used when creating the config directory.
	defaultDirPermissions = 0o755
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInstallDirRequired is returned when the install directory is blank.
	errInstallDirRequired = errors.New("install directory must be provided")
)

// DefaultPath returns the settings file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppDirName, DefaultConfigFilename)
}

// Default returns a configuration with every field at its default value.
func Default() *Config {
	return &Config{
		InstallDir: DefaultInstallDir,
		FeedURL:    DefaultFeedURL,
	}
}

// Load reads configuration from the provided path and validates it.
// A missing file is not an error: defaults are returned instead.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path, replacing any previous file atomically.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultPath()
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	path = filepath.Clean(path)
	if err = os.MkdirAll(filepath.Dir(path), defaultDirPermissions); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	// go-update swaps an existing target, so make sure there is one.
	if _, err = os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err = os.WriteFile(path, nil, DefaultFilePermissions); err != nil {
			return fmt.Errorf("create settings: %w", err)
		}
	}

	options := goupdate.Options{
		TargetPath: path,
		TargetMode: DefaultFilePermissions,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills defaults for optional fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	cfg.InstallDir = strings.TrimSpace(cfg.InstallDir)
	if cfg.InstallDir == "" {
		return errInstallDirRequired
	}

	if cfg.FeedURL == "" {
		cfg.FeedURL = DefaultFeedURL
	}

	if _, err := url.ParseRequestURI(cfg.FeedURL); err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}

	return nil
}

// ExpandPath resolves a leading "~" against the current user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return filepath.Clean(path), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
