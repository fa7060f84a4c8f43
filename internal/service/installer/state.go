package installer

import (
	"github.com/oshokin/protonup/internal/domain/proton"
)

// State is a step of an installer operation.
type State string

// Installer states.
const (
	StateResolving        State = "Resolving"
	StateCheckingExisting State = "CheckingExisting"
	StateAlreadyInstalled State = "AlreadyInstalled"
	StateDownloading      State = "Downloading"
	StateVerifying        State = "Verifying"
	StateExtracting       State = "Extracting"
	StateRemoving         State = "Removing"
	StateCleanup          State = "Cleanup"
	StateDone             State = "Done"
	StateCancelled        State = "Cancelled"
	StateFailed           State = "Failed"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	switch s {
	case StateAlreadyInstalled, StateDone, StateCancelled, StateFailed:
		return true
	default:
		return false
	}
}

// Result describes how an operation ended.
type Result struct {
	// State is the terminal state.
	State State
	// Release is the resolved release, nil if resolution did not happen or failed.
	Release *proton.Release
	// Identifier is the package directory name.
	Identifier string
	// Path is the package directory, or the archive path for download-only runs.
	Path string
	// Replaced is true when a broken earlier install was removed.
	Replaced bool
}
