package installer

import (
	"context"

	"github.com/oshokin/protonup/internal/domain/proton"
)

// List reports the installed packages through the output and returns them.
func (s *Service) List(ctx context.Context) ([]proton.Package, error) {
	var installed []proton.Package

	for pkg, err := range s.store.List() {
		if err != nil {
			return nil, err
		}

		if err = ctx.Err(); err != nil {
			return nil, err
		}

		installed = append(installed, pkg)
	}

	if err := s.output.Packages(s.store.Root(), installed); err != nil {
		return installed, err
	}

	return installed, nil
}
