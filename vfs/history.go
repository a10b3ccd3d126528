package vfs

import "strings"

// version is a file's state before an edit; existed is false when the edit
// created the file. dirs is the topmost directory that create had to make,
// empty when every ancestor was already there.
type version struct {
	content string
	existed bool
	dirs    string
}

// history keeps the last few versions of each edited file
type history struct {
	depth    int
	versions map[string][]version
}

func newHistory(depth int) *history {
	if depth < 0 {
		depth = 0
	}
	return &history{depth: depth, versions: make(map[string][]version)}
}

func (h *history) record(path string, v version) {
	if h.depth == 0 {
		return
	}
	stack := append(h.versions[path], v)
	if len(stack) > h.depth {
		stack = stack[len(stack)-h.depth:]
	}
	h.versions[path] = stack
}

func (h *history) pop(path string) (version, bool) {
	stack := h.versions[path]
	if len(stack) == 0 {
		return version{}, false
	}
	v := stack[len(stack)-1]
	if len(stack) == 1 {
		delete(h.versions, path)
	} else {
		h.versions[path] = stack[:len(stack)-1]
	}
	return v, true
}

// drop forgets path and everything below it
func (h *history) drop(path string) {
	for p := range h.versions {
		if isWithin(p, path) {
			delete(h.versions, p)
		}
	}
}

// move re-keys path and everything below it under newPath
func (h *history) move(path, newPath string) {
	moved := make(map[string][]version)
	for p, stack := range h.versions {
		if isWithin(p, path) {
			for i, v := range stack {
				if v.dirs != "" && isWithin(v.dirs, path) {
					stack[i].dirs = newPath + strings.TrimPrefix(v.dirs, path)
				}
			}
			moved[newPath+strings.TrimPrefix(p, path)] = stack
			delete(h.versions, p)
		}
	}
	for p, stack := range moved {
		h.versions[p] = stack
	}
}

// UndoEdit restores the file at path to its state before the most recent
// create, update, replace or insert. Undoing a create removes the file and
// any directories that create made, as long as they are still empty.
func (fs *FileSystem) UndoEdit(path string) error {
	p, err := normalizeFor("undo", path)
	if err != nil {
		return err
	}
	v, ok := fs.history.pop(p)
	if !ok {
		return newPathError("undo", p, ErrNothingToUndo, "No edit to undo for %s", p)
	}

	n, exists := fs.lookup(p)
	switch {
	case !v.existed:
		if exists {
			n.parent.RemoveChild(n.name)
		}
		fs.pruneDirs(p, v.dirs)
	case exists && !n.isDir:
		n.content = v.content
	case exists:
		return newPathError("undo", p, ErrNotAFile, "Not a file: %s", p)
	default:
		parentPath, _ := ParentOf(p)
		parent, err := fs.mkdirAll("undo", parentPath)
		if err != nil {
			return err
		}
		parent.AddChild(newFileNode(Filename(p), p, v.content))
	}
	return nil
}

// pruneDirs removes the empty ancestors of p up to and including top
func (fs *FileSystem) pruneDirs(p, top string) {
	if top == "" {
		return
	}
	cur, ok := ParentOf(p)
	for ok && isWithin(cur, top) && cur != RootPath {
		n, exists := fs.lookup(cur)
		if !exists || !n.isDir || len(n.children) > 0 {
			return
		}
		n.parent.RemoveChild(n.name)
		if cur == top {
			return
		}
		cur, ok = ParentOf(cur)
	}
}
