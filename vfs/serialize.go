package vfs

import (
	"errors"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/internal/util"
)

// Serialize flattens fs into a snapshot in pre-order, root first, so parents
// always precede their children and sibling order is kept.
func Serialize(fs *FileSystem) projectfs.Snapshot {
	var snap projectfs.Snapshot
	fs.Walk(func(n *Node) bool {
		e := projectfs.Entry{Path: n.path, Type: n.Type()}
		if !n.isDir {
			e.Content = n.content
		}
		snap = append(snap, e)
		return true
	})
	return snap
}

// Deserialize builds a tree with default settings from snap
func Deserialize(snap projectfs.Snapshot) (*FileSystem, error) {
	fs := NewFS(nil)
	if err := fs.Load(snap); err != nil {
		return nil, err
	}
	return fs, nil
}

// Load replaces the tree with the contents of snap. Entries may come in any
// order; missing ancestors are created as directories. On error the tree is
// left unchanged. Undo history starts empty.
func (fs *FileSystem) Load(snap projectfs.Snapshot) error {
	logger := util.GetLogger("FS.Load")

	root := newDirNode("", RootPath)
	tmp := &FileSystem{cfg: fs.cfg, root: root, history: newHistory(0)}
	kinds := make(map[string]projectfs.NodeType, len(snap))

	for _, e := range snap {
		p, err := Normalize(e.Path)
		if err != nil {
			return newPathError("load", e.Path, ErrCorrupt, "Corrupt snapshot: invalid path %q", e.Path)
		}
		if prev, seen := kinds[p]; seen && prev != e.Type {
			return newPathError("load", p, ErrCorrupt, "Corrupt snapshot: %s is both a %s and a %s", p, prev, e.Type)
		}
		kinds[p] = e.Type

		switch e.Type {
		case projectfs.DirectoryType:
			if _, err := tmp.mkdirAll("load", p); err != nil {
				return corrupt(p, err)
			}
		case projectfs.FileType:
			if p == RootPath {
				return newPathError("load", p, ErrCorrupt, "Corrupt snapshot: root must be a directory")
			}
			if err := tmp.loadFile(p, e.Content); err != nil {
				return corrupt(p, err)
			}
		default:
			return newPathError("load", p, ErrCorrupt, "Corrupt snapshot: unknown node type %q for %s", e.Type, p)
		}
	}

	fs.root = root
	fs.history = newHistory(fs.cfg.UndoDepth)
	logger.Debug().Int("entries", len(snap)).Msg("Loaded snapshot")
	return nil
}

func (fs *FileSystem) loadFile(p, content string) error {
	if n, ok := fs.lookup(p); ok {
		if n.isDir {
			return newPathError("load", p, ErrNotAFile, "Not a file: %s", p)
		}
		n.content = content
		return nil
	}
	parentPath, _ := ParentOf(p)
	parent, err := fs.mkdirAll("load", parentPath)
	if err != nil {
		return err
	}
	parent.AddChild(newFileNode(Filename(p), p, content))
	return nil
}

// corrupt re-labels a structural conflict found while loading
func corrupt(p string, err error) error {
	var pe *PathError
	if errors.As(err, &pe) {
		return newPathError("load", p, ErrCorrupt, "Corrupt snapshot: %s", pe.Error())
	}
	return newPathError("load", p, ErrCorrupt, "Corrupt snapshot: %v", err)
}
