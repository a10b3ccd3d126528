package vfs

import (
	"sort"

	"github.com/brettbedarf/projectfs/config"
	"github.com/brettbedarf/projectfs/internal/util"
)

// EntryPoint is the file a preview opens first when the project has one
const EntryPoint = "/App.jsx"

// FileEntry is a file path paired with its content
type FileEntry struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// FileSystem is an in-memory project tree. It is built per turn, mutated by
// a single writer and discarded afterwards, so it carries no locks.
type FileSystem struct {
	cfg     *config.Config
	root    *Node
	history *history
}

// NewFS creates an empty tree holding only the root directory.
// A nil cfg uses the defaults.
func NewFS(cfg *config.Config) *FileSystem {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	return &FileSystem{
		cfg:     cfg,
		root:    newDirNode("", RootPath),
		history: newHistory(cfg.UndoDepth),
	}
}

// Root returns the root directory node
func (fs *FileSystem) Root() *Node {
	return fs.root
}

// lookup resolves a canonical path to its node
func (fs *FileSystem) lookup(path string) (*Node, bool) {
	cur := fs.root
	for _, seg := range Segments(path) {
		if !cur.isDir {
			return nil, false
		}
		child, ok := cur.GetChild(seg)
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// CreateFile adds a file whose parent directory must already exist
func (fs *FileSystem) CreateFile(path, content string) error {
	p, err := normalizeFor("create", path)
	if err != nil {
		return err
	}
	parentPath, ok := ParentOf(p)
	if !ok {
		return newPathError("create", p, ErrAlreadyExists, "File already exists: %s", p)
	}
	parent, ok := fs.lookup(parentPath)
	if !ok {
		return newPathError("create", p, ErrParentMissing, "Parent directory does not exist: %s", parentPath)
	}
	if !parent.isDir {
		return newPathError("create", p, ErrNotADirectory, "Not a directory: %s", parentPath)
	}
	return fs.addFile(parent, p, content, "")
}

// CreateFileWithParents adds a file, creating any missing ancestor
// directories first. An ancestor that is a file fails the whole call
// without creating anything.
func (fs *FileSystem) CreateFileWithParents(path, content string) error {
	p, err := normalizeFor("create", path)
	if err != nil {
		return err
	}
	parentPath, ok := ParentOf(p)
	if !ok {
		return newPathError("create", p, ErrAlreadyExists, "File already exists: %s", p)
	}
	if _, exists := fs.lookup(p); exists {
		return newPathError("create", p, ErrAlreadyExists, "File already exists: %s", p)
	}
	dirs := fs.firstMissing(parentPath)
	parent, err := fs.mkdirAll("create", parentPath)
	if err != nil {
		return err
	}
	return fs.addFile(parent, p, content, dirs)
}

// addFile attaches a new file under parent. dirs is the topmost directory
// created for it, if any, so undo can take it away again.
func (fs *FileSystem) addFile(parent *Node, p, content, dirs string) error {
	name := Filename(p)
	if _, exists := parent.GetChild(name); exists {
		return newPathError("create", p, ErrAlreadyExists, "File already exists: %s", p)
	}
	fs.history.record(p, version{existed: false, dirs: dirs})
	parent.AddChild(newFileNode(name, p, content))

	logger := util.GetLogger("FS.Create")
	logger.Debug().Str("path", p).Int("size", len(content)).Msg("Created file")
	return nil
}

// CreateDirectory creates path and any missing ancestors, like mkdir -p.
// An existing directory is not an error.
func (fs *FileSystem) CreateDirectory(path string) error {
	p, err := normalizeFor("mkdir", path)
	if err != nil {
		return err
	}
	_, err = fs.mkdirAll("mkdir", p)
	return err
}

// firstMissing returns the shortest prefix of p that does not exist, or ""
// when p itself exists
func (fs *FileSystem) firstMissing(p string) string {
	cur := fs.root
	for _, seg := range Segments(p) {
		child, ok := cur.GetChild(seg)
		if !ok {
			return Join(cur.path, seg)
		}
		cur = child
	}
	return ""
}

// mkdirAll returns the directory at p, creating what is missing. Every
// existing prefix is checked before anything is created.
func (fs *FileSystem) mkdirAll(op, p string) (*Node, error) {
	segs := Segments(p)
	cur := fs.root
	depth := 0
	for ; depth < len(segs); depth++ {
		child, ok := cur.GetChild(segs[depth])
		if !ok {
			break
		}
		if !child.isDir {
			return nil, newPathError(op, p, ErrNotADirectory, "Not a directory: %s", child.path)
		}
		cur = child
	}

	created := 0
	for ; depth < len(segs); depth++ {
		dir := newDirNode(segs[depth], Join(cur.path, segs[depth]))
		cur.AddChild(dir)
		cur = dir
		created++
	}
	if created > 0 {
		logger := util.GetLogger("FS.Mkdir")
		logger.Debug().Str("path", p).Int("created", created).Msg("Created directories")
	}
	return cur, nil
}

// ReadFile returns the content of the file at path. ok is false when the
// path is invalid, missing or a directory.
func (fs *FileSystem) ReadFile(path string) (content string, ok bool) {
	p, err := Normalize(path)
	if err != nil {
		return "", false
	}
	n, found := fs.lookup(p)
	if !found || n.isDir {
		return "", false
	}
	return n.content, true
}

// UpdateFile replaces the whole content of an existing file
func (fs *FileSystem) UpdateFile(path, content string) error {
	n, err := fs.fileNode("update", path)
	if err != nil {
		return err
	}
	fs.history.record(n.path, version{content: n.content, existed: true})
	n.content = content
	return nil
}

// fileNode resolves path to an existing file node
func (fs *FileSystem) fileNode(op, path string) (*Node, error) {
	p, err := normalizeFor(op, path)
	if err != nil {
		return nil, err
	}
	n, ok := fs.lookup(p)
	if !ok {
		return nil, newPathError(op, p, ErrNotFound, "File not found: %s", p)
	}
	if n.isDir {
		return nil, newPathError(op, p, ErrNotAFile, "Not a file: %s", p)
	}
	return n, nil
}

// DeleteFile removes the file or directory at path, directories
// recursively. Deleting a missing path reports false without error, as
// does deleting the root; use [FileSystem.Reset] to clear the tree.
func (fs *FileSystem) DeleteFile(path string) (bool, error) {
	p, err := normalizeFor("delete", path)
	if err != nil {
		return false, err
	}
	if p == RootPath {
		return false, nil
	}
	n, ok := fs.lookup(p)
	if !ok {
		return false, nil
	}
	n.parent.RemoveChild(n.name)
	fs.history.drop(p)

	logger := util.GetLogger("FS.Delete")
	logger.Debug().Str("path", p).Bool("dir", n.isDir).Msg("Deleted node")
	return true, nil
}

// Rename moves the node at oldPath, and its whole subtree, to newPath.
// Missing ancestors of newPath are created.
func (fs *FileSystem) Rename(oldPath, newPath string) error {
	src, err := normalizeFor("rename", oldPath)
	if err != nil {
		return err
	}
	dst, err := normalizeFor("rename", newPath)
	if err != nil {
		return err
	}
	if src == RootPath {
		return newPathError("rename", src, ErrInvalidPath, "Cannot rename the root directory")
	}
	n, ok := fs.lookup(src)
	if !ok {
		return newPathError("rename", src, ErrNotFound, "File not found: %s", src)
	}
	if _, exists := fs.lookup(dst); exists {
		return newPathError("rename", dst, ErrAlreadyExists, "File already exists: %s", dst)
	}
	if n.isDir && isWithin(dst, src) {
		return newPathError("rename", dst, ErrInvalidPath, "Cannot move %s into itself", src)
	}

	dstParentPath, _ := ParentOf(dst)
	dstParent, err := fs.mkdirAll("rename", dstParentPath)
	if err != nil {
		return err
	}

	n.parent.RemoveChild(n.name)
	n.name = Filename(dst)
	n.repath(dst)
	dstParent.AddChild(n)
	fs.history.move(src, dst)

	logger := util.GetLogger("FS.Rename")
	logger.Debug().Str("from", src).Str("to", dst).Msg("Renamed node")
	return nil
}

// Stat returns the node at path
func (fs *FileSystem) Stat(path string) (*Node, bool) {
	p, err := Normalize(path)
	if err != nil {
		return nil, false
	}
	return fs.lookup(p)
}

// List returns the children of the directory at path in insertion order
func (fs *FileSystem) List(path string) ([]*Node, error) {
	p, err := normalizeFor("list", path)
	if err != nil {
		return nil, err
	}
	n, ok := fs.lookup(p)
	if !ok {
		return nil, newPathError("list", p, ErrNotFound, "File not found: %s", p)
	}
	if !n.isDir {
		return nil, newPathError("list", p, ErrNotADirectory, "Not a directory: %s", p)
	}
	return n.Children(), nil
}

// Walk calls fn for every node in pre-order, starting at the root, until
// fn returns false.
func (fs *FileSystem) Walk(fn func(n *Node) bool) {
	fs.root.walk(fn)
}

// GetAllFiles returns every file in pre-order
func (fs *FileSystem) GetAllFiles() []FileEntry {
	var files []FileEntry
	fs.Walk(func(n *Node) bool {
		if !n.isDir {
			files = append(files, FileEntry{Path: n.path, Content: n.content})
		}
		return true
	})
	return files
}

// Files returns every file keyed by path
func (fs *FileSystem) Files() map[string]string {
	files := make(map[string]string)
	for _, f := range fs.GetAllFiles() {
		files[f.Path] = f.Content
	}
	return files
}

// Reset empties the tree back to a bare root and forgets all undo history
func (fs *FileSystem) Reset() {
	fs.root = newDirNode("", RootPath)
	fs.history = newHistory(fs.cfg.UndoDepth)
}

// EntryFile returns the file a preview should open: [EntryPoint] when it
// exists, else the lexically first root-level file, else "".
func (fs *FileSystem) EntryFile() string {
	if n, ok := fs.lookup(EntryPoint); ok && !n.isDir {
		return EntryPoint
	}
	var names []string
	for _, child := range fs.root.Children() {
		if !child.isDir {
			names = append(names, child.path)
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return names[0]
}
