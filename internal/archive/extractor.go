package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver"

	"github.com/oshokin/protonup/internal/domain/proton"
	"github.com/oshokin/protonup/internal/logger"
)

const (
	// dirMode is used while extracting; recorded modes are applied at the end.
	dirMode os.FileMode = 0o755

	// pendingMarkerName holds the marker until every other entry is written.
	pendingMarkerName = "." + proton.MarkerFilename + ".pending"
)

var (
	errUnexpectedHeader = errors.New("unexpected archive header type")
	errOutsidePackage   = errors.New("entry outside package directory")
	errThroughSymlink   = errors.New("entry would be written through a symlink")
	errMissingMarker    = errors.New("archive has no marker file")
)

// Extractor unpacks gzip tarballs.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// extraction is the state of a single Extract call.
type extraction struct {
	ctx      context.Context //nolint:containedctx // Scoped to one Extract call.
	destDir  string
	topLevel string
	dirModes map[string]os.FileMode
	symlinks map[string]struct{}
	marker   bool
}

// Extract unpacks archivePath into destDir. Every entry must live under topLevel.
func (e *Extractor) Extract(ctx context.Context, archivePath, destDir, topLevel string) error {
	x := &extraction{
		ctx:      ctx,
		destDir:  filepath.Clean(destDir),
		topLevel: topLevel,
		dirModes: make(map[string]os.FileMode),
		symlinks: make(map[string]struct{}),
	}

	if err := os.MkdirAll(x.destDir, dirMode); err != nil {
		return fmt.Errorf("%w: create %s: %w", proton.ErrExtraction, x.destDir, err)
	}

	var entryErr error

	walkErr := archiver.NewTarGz().Walk(archivePath, func(f archiver.File) error {
		if err := x.entry(f); err != nil {
			entryErr = err
			return err
		}

		return nil
	})

	// archiver flattens walk errors into strings, so keep the original.
	if entryErr != nil {
		return fmt.Errorf("%w: %w", proton.ErrExtraction, entryErr)
	}

	if walkErr != nil {
		return fmt.Errorf("%w: %w", proton.ErrExtraction, walkErr)
	}

	if err := x.finish(); err != nil {
		return fmt.Errorf("%w: %w", proton.ErrExtraction, err)
	}

	return nil
}

// entry extracts a single archive member.
func (x *extraction) entry(f archiver.File) error {
	if err := x.ctx.Err(); err != nil {
		return err
	}

	header, ok := f.Header.(*tar.Header)
	if !ok {
		return fmt.Errorf("%w: %T", errUnexpectedHeader, f.Header)
	}

	name, err := x.memberName(header.Name)
	if err != nil || name == "" {
		return err
	}

	target := filepath.Join(x.destDir, filepath.FromSlash(name))
	mode := header.FileInfo().Mode().Perm()

	switch header.Typeflag {
	case tar.TypeDir:
		x.dirModes[target] = mode

		return os.MkdirAll(target, dirMode)
	case tar.TypeReg:
		if name == path.Join(x.topLevel, proton.MarkerFilename) {
			x.marker = true
			target = filepath.Join(x.destDir, x.topLevel, pendingMarkerName)
		}

		return writeFile(target, f, mode)
	case tar.TypeSymlink:
		x.symlinks[name] = struct{}{}

		return writeSymlink(target, header.Linkname)
	case tar.TypeLink:
		linkName, err := x.memberName(header.Linkname)
		if err != nil {
			return err
		}

		return writeHardLink(filepath.Join(x.destDir, filepath.FromSlash(linkName)), target)
	default:
		logger.DebugKV(x.ctx, "Skipping archive entry", "name", name, "type", string(header.Typeflag))

		return nil
	}
}

// memberName cleans an archive path and checks it stays inside the package.
// The bare "./" root entry yields an empty name.
func (x *extraction) memberName(raw string) (string, error) {
	name := path.Clean(strings.TrimPrefix(raw, "./"))
	if name == "." {
		return "", nil
	}

	if name != x.topLevel && !strings.HasPrefix(name, x.topLevel+"/") {
		return "", fmt.Errorf("%w: %s", errOutsidePackage, raw)
	}

	for parent := path.Dir(name); parent != "." && parent != "/"; parent = path.Dir(parent) {
		if _, isLink := x.symlinks[parent]; isLink {
			return "", fmt.Errorf("%w: %s", errThroughSymlink, raw)
		}
	}

	return name, nil
}

// finish applies directory modes and publishes the marker.
func (x *extraction) finish() error {
	if !x.marker {
		return fmt.Errorf("%w: %s/%s", errMissingMarker, x.topLevel, proton.MarkerFilename)
	}

	for dir, mode := range x.dirModes {
		if err := os.Chmod(dir, mode); err != nil {
			return err
		}
	}

	packageDir := filepath.Join(x.destDir, x.topLevel)

	return os.Rename(
		filepath.Join(packageDir, pendingMarkerName),
		filepath.Join(packageDir, proton.MarkerFilename),
	)
}

// writeFile copies r into a fresh file at target with the given permissions.
func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
		return err
	}

	// Replace rather than write through whatever is there.
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	file, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(file, r); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}

	if err = file.Close(); err != nil {
		return err
	}

	// The umask may have stripped bits at creation time.
	return os.Chmod(target, mode)
}

// writeSymlink creates a symbolic link at target.
func writeSymlink(target, linkName string) error {
	if err := os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
		return err
	}

	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return os.Symlink(linkName, target)
}

// writeHardLink links target to an already extracted file.
func writeHardLink(source, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
		return err
	}

	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return os.Link(source, target)
}
