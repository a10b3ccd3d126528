package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/brettbedarf/projectfs"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FileStore writes each project to <dir>/<id>.json on an afero filesystem
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore creates dir on fs if it is missing
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create store directory %s", dir)
	}
	return &FileStore{fs: fs, dir: dir}, nil
}

func (s *FileStore) path(projectID string) string {
	return filepath.Join(s.dir, projectID+".json")
}

func (s *FileStore) Load(ctx context.Context, projectID string) (projectfs.Snapshot, error) {
	if err := validateID(projectID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, s.path(projectID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "project %s", projectID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read project %s", projectID)
	}

	var snap projectfs.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(err, "decode project %s", projectID)
	}
	return snap, nil
}

// Save writes to a temporary file first so a reader never sees a partial
// document.
func (s *FileStore) Save(ctx context.Context, projectID string, snap projectfs.Snapshot) error {
	if err := validateID(projectID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode project %s", projectID)
	}

	dst := s.path(projectID)
	tmp := dst + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write project %s", projectID)
	}
	if err := s.fs.Rename(tmp, dst); err != nil {
		_ = s.fs.Remove(tmp)
		return errors.Wrapf(err, "replace project %s", projectID)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
