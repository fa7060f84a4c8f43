package installer

import (
	"context"

	"github.com/oshokin/protonup/internal/domain/proton"
	"github.com/oshokin/protonup/internal/logger"
	"github.com/oshokin/protonup/internal/repository/packages"
	"github.com/oshokin/protonup/internal/service/download"
)

// ReleaseFeed resolves releases and their checksums.
type ReleaseFeed interface {
	Resolve(ctx context.Context, selector proton.Selector) (*proton.Release, error)
	Checksum(ctx context.Context, checksumURL string) ([]byte, error)
}

// Fetcher downloads a URL into a local file.
type Fetcher interface {
	Fetch(ctx context.Context, url, destination string, progress download.ProgressFunc) (int64, error)
}

// Extractor unpacks a package archive into the install directory.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir, topLevel string) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Output receives user-facing status.
type Output interface {
	Infof(format string, args ...any)
	Successf(format string, args ...any)
	Warnf(format string, args ...any)
	StartProgress(title string, total int64) (func(downloaded, total int64), func())
	Packages(installDir string, installed []proton.Package) error
}

// Dependencies are the collaborators of a Service.
type Dependencies struct {
	Feed      ReleaseFeed
	Store     packages.Repository
	Fetcher   Fetcher
	Extractor Extractor
	Confirmer Confirmer
	Output    Output
}

// Service runs install, remove, download and list operations.
type Service struct {
	feed      ReleaseFeed
	store     packages.Repository
	fetcher   Fetcher
	extractor Extractor
	confirmer Confirmer
	output    Output
	// tempRoot is where per-install temporary directories are created; empty means os.TempDir.
	tempRoot string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTempRoot overrides the parent directory of temporary downloads.
func WithTempRoot(dir string) ServiceOption {
	return func(s *Service) {
		s.tempRoot = dir
	}
}

// New creates a Service. A nil Output discards status and a nil Confirmer
// declines every question.
func New(deps Dependencies, opts ...ServiceOption) *Service {
	s := &Service{
		feed:      deps.Feed,
		store:     deps.Store,
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		confirmer: deps.Confirmer,
		output:    deps.Output,
	}

	if s.output == nil {
		s.output = discardOutput{}
	}

	if s.confirmer == nil {
		s.confirmer = declineAll{}
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// enter records a transition.
func (s *Service) enter(ctx context.Context, result *Result, state State) {
	result.State = state

	logger.DebugKV(ctx, "Installer state", "state", string(state), "package", result.Identifier)
}

// fail moves result to Failed and returns err unchanged.
func (s *Service) fail(ctx context.Context, result *Result, err error) (*Result, error) {
	s.enter(ctx, result, StateFailed)

	logger.DebugKV(ctx, "Operation failed", "error", err)

	return result, err
}

type discardOutput struct{}

func (discardOutput) Infof(string, ...any)    {}
func (discardOutput) Successf(string, ...any) {}
func (discardOutput) Warnf(string, ...any)    {}

func (discardOutput) StartProgress(string, int64) (func(int64, int64), func()) {
	return func(int64, int64) {}, func() {}
}

func (discardOutput) Packages(string, []proton.Package) error { return nil }

type declineAll struct{}

func (declineAll) Confirm(context.Context, string) (bool, error) { return false, nil }
