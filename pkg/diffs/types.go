package diffs

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-locators/version"
)

// ErrNotFound reports a version whose diff payload cannot be loaded.
var ErrNotFound = errors.New("diffs: diff not found")

// ErrDuplicateVersion reports two catalog entries resolving to the same
// version.
var ErrDuplicateVersion = errors.New("diffs: duplicate version")

// Diff is a sparse override of a locator tree, defined relative to the state
// produced by the previous diff in the chain.
type Diff struct {
	Version  version.Version
	Override map[string]any
	Source   string
}

// Repository enumerates and loads diffs. Implementations must be
// deterministic and must never hand out state the caller could use to mutate
// the catalog.
type Repository interface {
	List(ctx context.Context) ([]version.Version, error)
	Load(ctx context.Context, v version.Version) (Diff, error)
}

func notFound(v version.Version) error {
	return fmt.Errorf("%w: %s", ErrNotFound, v)
}
