package installer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/oshokin/protonup/internal/domain/proton"
	"github.com/oshokin/protonup/internal/logger"
)

// Remove deletes the package installed for tag after confirmation.
// A missing package directory fails with proton.ErrNotInstalled before any prompt.
func (s *Service) Remove(ctx context.Context, tag string, autoConfirm bool) (*Result, error) {
	ctx = logger.WithKV(ctx, "tag", tag)
	result := &Result{
		Identifier: proton.PackageDirName(tag),
	}
	result.Path = filepath.Join(s.store.Root(), result.Identifier)

	s.enter(ctx, result, StateCheckingExisting)

	if err := proton.ValidateTag(tag); err != nil {
		return s.fail(ctx, result, err)
	}

	if !s.store.Exists(tag) {
		return s.fail(ctx, result, fmt.Errorf("%w: %s", proton.ErrNotInstalled, result.Identifier))
	}

	if !autoConfirm {
		accepted, err := s.confirmer.Confirm(ctx, fmt.Sprintf("Remove %s?", result.Identifier))
		if err != nil {
			return s.fail(ctx, result, fmt.Errorf("confirm removal of %s: %w", result.Identifier, err))
		}

		if !accepted {
			s.enter(ctx, result, StateCancelled)
			s.output.Infof("Removal of %s cancelled", result.Identifier)

			return result, nil
		}
	}

	s.enter(ctx, result, StateRemoving)

	if err := s.store.Remove(tag); err != nil {
		return s.fail(ctx, result, err)
	}

	s.enter(ctx, result, StateDone)
	s.output.Successf("Removed %s", result.Identifier)

	return result, nil
}
