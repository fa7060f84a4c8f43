package runlock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/protonup/internal/domain/proton"
	"github.com/oshokin/protonup/internal/logger"
)

const (
	// DefaultFilename is the marker file name.
	DefaultFilename = "protonup.lock"

	// markerPermissions restricts the marker to its owner.
	markerPermissions = 0o600
)

// Lock is a held run lock.
type Lock struct {
	path string
}

// ProcessAlive reports whether pid belongs to a running process named like the current one.
// It is a variable so tests can simulate other processes.
//
//nolint:gochecknoglobals // Test seam for process inspection.
var ProcessAlive = processAlive

// Acquire creates the marker at path or fails with proton.ErrAlreadyRunning.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	path = filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		err := create(path)
		if err == nil {
			logger.DebugKV(ctx, "Acquired run lock", "path", path)
			return &Lock{path: path}, nil
		}

		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("create lock: %w", err)
		}

		pid, readErr := readPID(path)
		if readErr == nil && pid != os.Getpid() && ProcessAlive(pid) {
			return nil, fmt.Errorf("%w (pid %d, lock %s)", proton.ErrAlreadyRunning, pid, path)
		}

		logger.InfoKV(ctx, "Removing stale run lock", "path", path, "pid", pid)

		if err = os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove stale lock: %w", err)
		}
	}

	return nil, fmt.Errorf("%w (lock %s)", proton.ErrAlreadyRunning, path)
}

// Release removes the marker.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}

	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

// create writes the current PID to a new marker, failing if one exists.
func create(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, markerPermissions)
	if err != nil {
		return err
	}

	_, err = file.WriteString(strconv.Itoa(os.Getpid()))
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	return err
}

// readPID parses the PID stored in the marker.
func readPID(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(strings.TrimSpace(string(raw)))
}

// processAlive looks pid up in the process table and compares executable names,
// so a PID recycled by an unrelated program does not hold the lock.
func processAlive(pid int) bool {
	process, err := ps.FindProcess(pid)
	if err != nil || process == nil {
		return false
	}

	self, err := ps.FindProcess(os.Getpid())
	if err != nil || self == nil {
		return true
	}

	return process.Executable() == self.Executable()
}
