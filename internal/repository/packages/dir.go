package packages

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/oshokin/protonup/internal/domain/proton"
)

// Repository defines the operations the installer needs from the install directory.
type Repository interface {
	Root() string
	List() iter.Seq2[proton.Package, error]
	IsInstalled(tag string) bool
	Exists(tag string) bool
	Remove(tag string) error
}

// DirRepository reads and mutates package directories under a root directory.
type DirRepository struct {
	// root is the install directory.
	root string
}

// NewDirRepository creates a repository for the install directory at root.
func NewDirRepository(root string) *DirRepository {
	return &DirRepository{
		root: filepath.Clean(root),
	}
}

// Root returns the install directory.
func (r *DirRepository) Root() string {
	return r.root
}

// PackagePath returns the directory a tag extracts to.
// Tags that would resolve outside the install directory are rejected.
func (r *DirRepository) PackagePath(tag string) (string, error) {
	if err := proton.ValidateTag(tag); err != nil {
		return "", err
	}

	return filepath.Join(r.root, proton.PackageDirName(tag)), nil
}

// List enumerates installed packages in directory-name order.
// Each iteration re-reads the install directory; a missing directory yields nothing.
func (r *DirRepository) List() iter.Seq2[proton.Package, error] {
	return func(yield func(proton.Package, error) bool) {
		entries, err := os.ReadDir(r.root)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				yield(proton.Package{}, fmt.Errorf("read install directory: %w", err))
			}

			return
		}

		for _, entry := range entries {
			path := filepath.Join(r.root, entry.Name())

			// Stat follows symlinked package directories, matching IsInstalled.
			if info, statErr := os.Stat(path); statErr != nil || !info.IsDir() {
				continue
			}

			if !hasMarker(path) {
				continue
			}

			pkg := proton.Package{
				Identifier: entry.Name(),
				SizeBytes:  DirSize(path),
			}

			if !yield(pkg, nil) {
				return
			}
		}
	}
}

// IsInstalled reports whether the tag's directory exists and holds the marker file.
func (r *DirRepository) IsInstalled(tag string) bool {
	path, err := r.PackagePath(tag)

	return err == nil && hasMarker(path)
}

// Exists reports whether the tag's directory exists, complete or not.
func (r *DirRepository) Exists(tag string) bool {
	path, err := r.PackagePath(tag)
	if err != nil {
		return false
	}

	_, err = os.Lstat(path)

	return err == nil
}

// Remove deletes the tag's directory recursively.
func (r *DirRepository) Remove(tag string) error {
	path, err := r.PackagePath(tag)
	if err != nil {
		return err
	}

	if _, err = os.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", proton.ErrNotInstalled, proton.PackageDirName(tag))
		}

		return fmt.Errorf("stat %s: %w", path, err)
	}

	removeErr := os.RemoveAll(path)

	if _, err := os.Lstat(path); err == nil {
		if removeErr == nil {
			removeErr = fs.ErrExist
		}

		return &proton.PartialRemovalError{Path: path, Err: removeErr}
	}

	return nil
}

// DirSize sums the sizes of regular files under root.
// root itself may be a symlink; symlinks below it are not followed and
// unreadable entries are skipped.
func DirSize(root string) int64 {
	var size int64

	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	_ = filepath.WalkDir(root, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil || !entry.Type().IsRegular() {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return nil
		}

		size += info.Size()

		return nil
	})

	return size
}

// hasMarker reports whether dir contains the marker file.
func hasMarker(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, proton.MarkerFilename))

	return err == nil && !info.IsDir()
}
