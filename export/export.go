// Package export writes a project tree to a real (or in-memory) filesystem.
package export

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/internal/util"
	"github.com/brettbedarf/projectfs/vfs"
	"github.com/spf13/afero"
)

// Options control how a tree is written out
type Options struct {
	// Clean removes dir before writing so stale files do not linger
	Clean    bool
	FileMode os.FileMode
	DirMode  os.FileMode
}

func (o Options) withDefaults() Options {
	if o.FileMode == 0 {
		o.FileMode = 0o644
	}
	if o.DirMode == 0 {
		o.DirMode = 0o755
	}
	return o
}

// Export writes every directory and file of snap below dir on fs and
// returns the number of files written. The snapshot is validated first;
// a corrupt snapshot writes nothing.
func Export(fs afero.Fs, dir string, snap projectfs.Snapshot, opts Options) (int, error) {
	logger := util.GetLogger("Export")
	opts = opts.withDefaults()

	tree, err := vfs.Deserialize(snap)
	if err != nil {
		return 0, err
	}
	if opts.Clean {
		if err := fs.RemoveAll(dir); err != nil {
			return 0, err
		}
	}
	if err := fs.MkdirAll(dir, opts.DirMode); err != nil {
		return 0, err
	}

	written := 0
	tree.Walk(func(n *vfs.Node) bool {
		if n.IsRoot() {
			return true
		}
		target := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(n.Path(), "/")))
		if n.IsDir() {
			err = fs.MkdirAll(target, opts.DirMode)
		} else {
			err = afero.WriteFile(fs, target, []byte(n.Content()), opts.FileMode)
			if err == nil {
				written++
			}
		}
		return err == nil
	})
	if err != nil {
		return written, err
	}

	logger.Info().Str("dir", dir).Int("files", written).Msg("Exported project")
	return written, nil
}
