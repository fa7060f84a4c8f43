package installer

import (
	"bytes"
	"crypto"
	_ "crypto/sha512" // Registers crypto.SHA512.
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/protonup/internal/domain/proton"
)

// DefaultChecksumFunction is the digest published by the release feed.
const DefaultChecksumFunction = crypto.SHA512

var errHashUnavailable = errors.New("hash function is not available")

// FileChecksum returns the digest of the file at path.
func FileChecksum(path string) ([]byte, error) {
	if !DefaultChecksumFunction.Available() {
		return nil, errHashUnavailable
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = file.Close()
	}()

	hasher := DefaultChecksumFunction.New()
	if _, err = io.Copy(hasher, file); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// verifyFile compares the digest of the file at path with want.
func verifyFile(path string, want []byte) error {
	got, err := FileChecksum(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", proton.ErrChecksumMismatch, filepath.Base(path), err)
	}

	if !bytes.Equal(got, want) {
		return fmt.Errorf("%w: %s: expected %x, got %x", proton.ErrChecksumMismatch, filepath.Base(path), want, got)
	}

	return nil
}
