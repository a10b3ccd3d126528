package store

import (
	"context"

	"github.com/brettbedarf/projectfs"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v4"
)

// MemoryStore keeps snapshots in a concurrent map for the life of the process
type MemoryStore struct {
	projects *xsync.Map[string, projectfs.Snapshot]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: xsync.NewMap[string, projectfs.Snapshot]()}
}

func (s *MemoryStore) Load(ctx context.Context, projectID string) (projectfs.Snapshot, error) {
	if err := validateID(projectID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, ok := s.projects.Load(projectID)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "project %s", projectID)
	}
	return clone(snap), nil
}

func (s *MemoryStore) Save(ctx context.Context, projectID string, snap projectfs.Snapshot) error {
	if err := validateID(projectID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.projects.Store(projectID, clone(snap))
	return nil
}

// Len returns the number of stored projects
func (s *MemoryStore) Len() int {
	return s.projects.Size()
}

func (s *MemoryStore) Close() error { return nil }
