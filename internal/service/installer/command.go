package installer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oshokin/protonup/internal/api/github"
	"github.com/oshokin/protonup/internal/archive"
	"github.com/oshokin/protonup/internal/config"
	"github.com/oshokin/protonup/internal/console"
	"github.com/oshokin/protonup/internal/domain/proton"
	"github.com/oshokin/protonup/internal/logger"
	"github.com/oshokin/protonup/internal/repository/packages"
	"github.com/oshokin/protonup/internal/runlock"
	"github.com/oshokin/protonup/internal/service/common"
	"github.com/oshokin/protonup/internal/service/download"
	"github.com/oshokin/protonup/internal/version"
)

var errInvalidLogLevel = errors.New("invalid log level")

// Options are inputs accepted by the CLI entry point.
type Options struct {
	// ConfigPath is the settings file; empty means the XDG default.
	ConfigPath string
	// Tag selects the release to install or download; empty or "latest" means the newest.
	Tag string
	// List prints installed packages.
	List bool
	// Remove is the tag of a package to delete.
	Remove string
	// InstallDir, when set, is persisted as the new install directory.
	InstallDir string
	// AutoConfirm answers yes to every prompt.
	AutoConfirm bool
	// Quiet suppresses status and progress output.
	Quiet bool
	// DownloadOnly saves the archive to OutputDir instead of installing it.
	DownloadOnly bool
	// OutputDir is where DownloadOnly writes the archive.
	OutputDir string
	// LogLevel overrides the configured diagnostic log level.
	LogLevel string

	// Output and Confirmer replace the terminal console when set.
	Output    Output
	Confirmer Confirmer
}

// installRequested reports whether the run should install or download a release.
// With no other action selected, the latest release is installed.
func (o *Options) installRequested() bool {
	if o.Tag != "" || o.DownloadOnly {
		return true
	}

	return !o.List && o.Remove == "" && o.InstallDir == ""
}

// mutates reports whether the run changes settings or the install directory.
func (o *Options) mutates() bool {
	return o.InstallDir != "" || o.Remove != "" || (o.installRequested() && !o.DownloadOnly)
}

// Run executes the requested operations in order: set directory, install
// or download, remove, list. The first failure stops the run.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, version.Name)

	settings, err := config.Open(opts.ConfigPath)
	if err != nil {
		return err
	}

	if err = applyLogLevel(opts.LogLevel, settings.LogLevel()); err != nil {
		return err
	}

	output, confirmer := opts.Output, opts.Confirmer
	if output == nil || confirmer == nil {
		terminal := console.Stdio(console.WithQuiet(opts.Quiet))

		if output == nil {
			output = terminal
		}

		if confirmer == nil {
			confirmer = terminal
		}
	}

	if opts.mutates() {
		lock, lockErr := runlock.Acquire(ctx, filepath.Join(filepath.Dir(settings.Path()), runlock.DefaultFilename))
		if lockErr != nil {
			return lockErr
		}

		defer func() {
			if releaseErr := lock.Release(); releaseErr != nil {
				logger.WarnKV(ctx, "Failed to release run lock", "error", releaseErr)
			}
		}()
	}

	if opts.InstallDir != "" {
		if err = settings.SetInstallDirectory(opts.InstallDir); err != nil {
			return err
		}
	}

	installDir, err := settings.InstallDirectory()
	if err != nil {
		return err
	}

	if opts.InstallDir != "" {
		output.Infof("Install directory set to %s", installDir)
	}

	logger.DebugKV(ctx, "Settings loaded", "config", settings.Path(), "install_dir", installDir, "feed", settings.FeedURL())

	client := common.NewClient()
	service := New(Dependencies{
		Feed:      github.NewFeed(settings.FeedURL(), client),
		Store:     packages.NewDirRepository(installDir),
		Fetcher:   download.New(client),
		Extractor: archive.NewExtractor(),
		Confirmer: confirmer,
		Output:    output,
	})

	return dispatch(ctx, service, opts)
}

// dispatch runs the selected operations against service.
func dispatch(ctx context.Context, service *Service, opts *Options) error {
	if opts.installRequested() {
		selector := proton.ParseSelector(opts.Tag)

		var err error
		if opts.DownloadOnly {
			_, err = service.Download(ctx, selector, opts.OutputDir)
		} else {
			_, err = service.Install(ctx, selector, opts.AutoConfirm)
		}

		if err != nil {
			return err
		}
	}

	if opts.Remove != "" {
		if _, err := service.Remove(ctx, opts.Remove, opts.AutoConfirm); err != nil {
			return err
		}
	}

	if opts.List {
		if _, err := service.List(ctx); err != nil {
			return err
		}
	}

	return nil
}

// applyLogLevel sets the global log level from the flag or, failing that, the settings.
func applyLogLevel(flagLevel, configLevel string) error {
	level := strings.TrimSpace(flagLevel)
	if level == "" {
		level = strings.TrimSpace(configLevel)
	}

	if level == "" {
		return nil
	}

	parsed, ok := logger.ParseLogLevel(level)
	if !ok {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, level)
	}

	logger.SetLevel(parsed)

	return nil
}
