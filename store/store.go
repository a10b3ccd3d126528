// Package store persists project snapshots between turns. The tree itself is
// opaque here: a snapshot goes in and comes back out unchanged.
package store

import (
	"context"
	"strings"

	"github.com/brettbedarf/projectfs"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by Load when no snapshot was saved for a project
	ErrNotFound = errors.New("project not found")
	// ErrInvalidID rejects project ids that are empty or not path safe
	ErrInvalidID = errors.New("invalid project id")
)

// Store loads and saves project snapshots by project id
type Store interface {
	Load(ctx context.Context, projectID string) (projectfs.Snapshot, error)
	Save(ctx context.Context, projectID string, snap projectfs.Snapshot) error
	Close() error
}

func validateID(projectID string) error {
	if strings.TrimSpace(projectID) == "" {
		return errors.Wrap(ErrInvalidID, "empty project id")
	}
	if strings.ContainsAny(projectID, `/\`) || projectID == "." || projectID == ".." {
		return errors.Wrapf(ErrInvalidID, "project id %q", projectID)
	}
	return nil
}

// clone copies snap so callers never share a backing array with the store
func clone(snap projectfs.Snapshot) projectfs.Snapshot {
	if snap == nil {
		return nil
	}
	out := make(projectfs.Snapshot, len(snap))
	copy(out, snap)
	return out
}
