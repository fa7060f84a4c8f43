package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/protonup/internal/domain/proton"
	"github.com/oshokin/protonup/internal/logger"
)

// tempPattern names the per-operation temporary directory.
const tempPattern = "protonup-"

// Install resolves selector and installs the release unless it is already present.
// autoConfirm answers yes to replacing a broken earlier install.
func (s *Service) Install(ctx context.Context, selector proton.Selector, autoConfirm bool) (*Result, error) {
	ctx = logger.WithKV(ctx, "selector", selector.String())
	result := &Result{}

	s.enter(ctx, result, StateResolving)

	release, err := s.feed.Resolve(ctx, selector)
	if err != nil {
		return s.fail(ctx, result, err)
	}

	if err = proton.ValidateTag(release.Tag); err != nil {
		return s.fail(ctx, result, fmt.Errorf("%w: %w", proton.ErrMalformedRelease, err))
	}

	result.Release = release
	result.Identifier = proton.PackageDirName(release.Tag)
	result.Path = filepath.Join(s.store.Root(), result.Identifier)

	s.enter(ctx, result, StateCheckingExisting)

	if s.store.IsInstalled(release.Tag) {
		s.enter(ctx, result, StateAlreadyInstalled)
		s.output.Infof("%s is already installed", result.Identifier)

		return result, nil
	}

	broken := s.store.Exists(release.Tag)
	if broken {
		s.output.Warnf("%s exists but is not a complete install", result.Path)

		if !autoConfirm {
			accepted, confirmErr := s.confirmer.Confirm(ctx, fmt.Sprintf("Replace incomplete %s?", result.Identifier))
			if confirmErr != nil {
				return s.fail(ctx, result, fmt.Errorf("%w: %s: %w", proton.ErrCorruptExisting, result.Path, confirmErr))
			}

			if !accepted {
				s.enter(ctx, result, StateCancelled)
				s.output.Infof("Installation of %s cancelled", result.Identifier)

				return result, nil
			}
		}
	}

	tempDir, err := os.MkdirTemp(s.tempRoot, tempPattern)
	if err != nil {
		return s.fail(ctx, result, fmt.Errorf("create temporary directory: %w", err))
	}

	archivePath := filepath.Join(tempDir, archiveName(release))

	if err = s.fetchVerified(ctx, result, archivePath); err != nil {
		s.removeTemp(ctx, tempDir)

		return s.fail(ctx, result, err)
	}

	s.enter(ctx, result, StateExtracting)

	if broken {
		if err = s.store.Remove(release.Tag); err != nil && !errors.Is(err, proton.ErrNotInstalled) {
			s.removeTemp(ctx, tempDir)

			return s.fail(ctx, result, fmt.Errorf("%w: %w", proton.ErrCorruptExisting, err))
		}

		result.Replaced = true
	}

	s.output.Infof("Extracting %s", result.Identifier)

	if err = s.extractor.Extract(ctx, archivePath, s.store.Root(), result.Identifier); err != nil {
		s.removeTemp(ctx, tempDir)

		return s.fail(ctx, result, err)
	}

	s.enter(ctx, result, StateCleanup)
	s.removeTemp(ctx, tempDir)

	s.enter(ctx, result, StateDone)
	s.output.Successf("Installed %s (released %s) to %s", result.Identifier, release.Date(), result.Path)

	return result, nil
}

// fetchVerified runs the Downloading and Verifying states for result.Release.
func (s *Service) fetchVerified(ctx context.Context, result *Result, archivePath string) error {
	release := result.Release

	s.enter(ctx, result, StateDownloading)
	s.output.Infof("Downloading %s", release.AssetName)

	update, done := s.output.StartProgress(release.AssetName, release.AssetSize)

	_, err := s.fetcher.Fetch(ctx, release.DownloadURL, archivePath, update)

	done()

	if err != nil {
		return err
	}

	s.enter(ctx, result, StateVerifying)

	if !release.HasChecksum() {
		s.output.Warnf("No checksum published for %s, skipping verification", release.Tag)

		return nil
	}

	want, err := s.feed.Checksum(ctx, release.ChecksumURL)
	if err != nil {
		return err
	}

	return verifyFile(archivePath, want)
}

// removeTemp deletes the temporary directory. Failures are only logged.
func (s *Service) removeTemp(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		logger.WarnKV(ctx, "Failed to remove temporary directory", "path", dir, "error", err)
	}
}

// archiveName returns a safe local file name for the release archive.
func archiveName(release *proton.Release) string {
	name := filepath.Base(release.AssetName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = proton.PackageDirName(release.Tag) + ".tar.gz"
	}

	return name
}
