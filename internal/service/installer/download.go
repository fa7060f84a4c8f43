package installer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/oshokin/protonup/internal/domain/proton"
	"github.com/oshokin/protonup/internal/logger"
)

// outputDirMode is used when the download directory has to be created.
const outputDirMode os.FileMode = 0o755

// Download resolves selector and saves the verified archive into outputDir
// without touching the install directory. A failed download leaves no file behind.
func (s *Service) Download(ctx context.Context, selector proton.Selector, outputDir string) (*Result, error) {
	ctx = logger.WithKV(ctx, "selector", selector.String())
	result := &Result{}

	s.enter(ctx, result, StateResolving)

	release, err := s.feed.Resolve(ctx, selector)
	if err != nil {
		return s.fail(ctx, result, err)
	}

	result.Release = release
	result.Identifier = proton.PackageDirName(release.Tag)

	if outputDir == "" {
		outputDir = "."
	}

	if err = os.MkdirAll(outputDir, outputDirMode); err != nil {
		return s.fail(ctx, result, fmt.Errorf("create %s: %w", outputDir, err))
	}

	result.Path = filepath.Join(outputDir, archiveName(release))

	if err = s.fetchVerified(ctx, result, result.Path); err != nil {
		if removeErr := os.Remove(result.Path); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
			logger.WarnKV(ctx, "Failed to remove partial download", "path", result.Path, "error", removeErr)
		}

		return s.fail(ctx, result, err)
	}

	s.enter(ctx, result, StateDone)
	s.output.Successf("Downloaded %s to %s", release.AssetName, result.Path)

	return result, nil
}
