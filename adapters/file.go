package adapters

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// FileProvider reads snapshots from a filesystem
type FileProvider struct {
	fs afero.Fs
}

// RegisterFile registers a file provider backed by fs
func RegisterFile(r *Registry, fs afero.Fs) {
	r.Register(FileAdapterType, &FileProvider{fs: fs})
}

// NewAdapter accepts a plain path or a file:// URL
func (p *FileProvider) NewAdapter(ref string) (Adapter, error) {
	path := strings.TrimPrefix(strings.TrimSpace(ref), "file://")
	if _, err := p.fs.Stat(path); err != nil {
		return nil, err
	}
	return &FileAdapter{fs: p.fs, path: path}, nil
}

// FileAdapter implements [Adapter] for one file
type FileAdapter struct {
	fs   afero.Fs
	path string
}

func (f *FileAdapter) Open(ctx context.Context) (io.ReadCloser, error) {
	return f.fs.Open(f.path)
}
