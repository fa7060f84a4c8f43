package proton

import (
	"errors"
	"fmt"
)

var (
	// ErrFeedUnavailable is returned when the release feed cannot be reached.
	ErrFeedUnavailable = errors.New("release feed unavailable")
	// ErrMalformedRelease is returned when the feed answered with unusable data.
	ErrMalformedRelease = errors.New("malformed release")
	// ErrTransport is returned when an asset download fails.
	ErrTransport = errors.New("transport error")
	// ErrChecksumMismatch is returned when a downloaded archive fails verification.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrExtraction is returned when an archive cannot be unpacked.
	ErrExtraction = errors.New("extraction failed")
	// ErrNotInstalled is returned when a removal target does not exist.
	ErrNotInstalled = errors.New("not installed")
	// ErrPartialRemoval is returned when a removal left files behind.
	ErrPartialRemoval = errors.New("partial removal")
	// ErrCorruptExisting marks a package directory that lacks the marker file.
	ErrCorruptExisting = errors.New("corrupt existing installation")
	// ErrInvalidTag is returned for tags that do not map to a single package directory.
	ErrInvalidTag = errors.New("invalid release tag")
	// ErrAlreadyRunning is returned when another protonup process holds the run lock.
	ErrAlreadyRunning = errors.New("another protonup process is running")
)

// PartialRemovalError reports the path that survived a failed removal.
type PartialRemovalError struct {
	// Path is the package directory that still exists.
	Path string
	// Err is the underlying filesystem error.
	Err error
}

// Error implements the error interface.
func (e *PartialRemovalError) Error() string {
	return fmt.Sprintf("%s: %s still exists: %v", ErrPartialRemoval, e.Path, e.Err)
}

// Unwrap exposes the underlying filesystem error.
func (e *PartialRemovalError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPartialRemoval) succeed.
func (e *PartialRemovalError) Is(target error) bool {
	return target == ErrPartialRemoval
}
