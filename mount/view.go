// Package mount exposes the latest project tree as a read-only FUSE
// filesystem, so a local editor or dev server can watch the agent's work.
package mount

import (
	"context"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/config"
	"github.com/brettbedarf/projectfs/internal/util"
	"github.com/brettbedarf/projectfs/tools"
	"github.com/brettbedarf/projectfs/vfs"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

const (
	dirMode  = fuse.S_IFDIR | 0o555
	fileMode = fuse.S_IFREG | 0o444
)

// View holds the most recent tree. Every published tree is immutable, so
// FUSE callbacks read it without locks while turns publish new ones.
type View struct {
	tree    atomic.Pointer[vfs.FileSystem]
	updated atomic.Int64 // unix nanos of the last publish
	server  *fuse.Server
}

var _ tools.Observer = (*View)(nil)

func NewView() *View {
	v := &View{}
	v.tree.Store(vfs.NewFS(nil))
	v.updated.Store(time.Now().UnixNano())
	return v
}

// OnChange publishes the tree carried by ev
func (v *View) OnChange(ev tools.Event) {
	if ev.Tree == nil {
		return
	}
	if err := v.Update(ev.Tree); err != nil {
		logger := util.GetLogger("View")
		logger.Warn().Err(err).Str("path", ev.Path).Msg("Ignoring unreadable tree")
	}
}

// Update replaces the visible tree with snap
func (v *View) Update(snap projectfs.Snapshot) error {
	fsys, err := vfs.Deserialize(snap)
	if err != nil {
		return err
	}
	v.tree.Store(fsys)
	v.updated.Store(time.Now().UnixNano())
	return nil
}

// Root returns the FUSE root node
func (v *View) Root() fs.InodeEmbedder {
	return &dirNode{view: v, path: vfs.RootPath}
}

// Mount serves the view at dir until Unmount is called
func (v *View) Mount(dir string, opts config.MountOptions) error {
	logger := util.GetLogger("View")
	srv, err := fs.Mount(dir, v.Root(), &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:   opts.Name,
			FsName: opts.FsName,
			Debug:  opts.Debug,
			Logger: util.NewLogLogger("FuseServer", util.DebugLevel),
		},
	})
	if err != nil {
		return err
	}
	v.server = srv
	logger.Info().Str("dir", dir).Msg("Mounted project view")
	return nil
}

// Wait blocks until the filesystem is unmounted
func (v *View) Wait() {
	if v.server != nil {
		v.server.Wait()
	}
}

func (v *View) Unmount() error {
	if v.server == nil {
		return nil
	}
	return v.server.Unmount()
}

func (v *View) stat(path string) (*vfs.Node, bool) {
	return v.tree.Load().Stat(path)
}

func (v *View) setTimes(attr *fuse.Attr) {
	t := time.Unix(0, v.updated.Load())
	attr.Atime = uint64(t.Unix())
	attr.Atimensec = uint32(t.Nanosecond())
	attr.Mtime = uint64(t.Unix())
	attr.Mtimensec = uint32(t.Nanosecond())
	attr.Ctime = uint64(t.Unix())
	attr.Ctimensec = uint32(t.Nanosecond())
}

// dirNode is a directory of the current tree, resolved by path on every call
type dirNode struct {
	fs.Inode
	view *View
	path string
}

var _ = (fs.NodeLookuper)((*dirNode)(nil))
var _ = (fs.NodeReaddirer)((*dirNode)(nil))
var _ = (fs.NodeGetattrer)((*dirNode)(nil))

func (n *dirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	child, ok := n.view.stat(vfs.Join(n.path, name))
	if !ok {
		return nil, syscall.ENOENT
	}
	embedder, mode := n.view.embed(child)
	fillAttr(&out.Attr, child)
	n.view.setTimes(&out.Attr)
	return n.NewInode(ctx, embedder, fs.StableAttr{Mode: mode}), 0
}

func (n *dirNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	dir, ok := n.view.stat(n.path)
	if !ok || !dir.IsDir() {
		return nil, syscall.ENOENT
	}
	children := dir.Children()
	entries := make([]fuse.DirEntry, 0, len(children))
	for _, c := range children {
		mode := uint32(fuse.S_IFREG)
		if c.IsDir() {
			mode = fuse.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{Name: c.Name(), Mode: mode})
	}
	return fs.NewListDirStream(entries), 0
}

func (n *dirNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	if _, ok := n.view.stat(n.path); !ok {
		return syscall.ENOENT
	}
	out.Mode = dirMode
	n.view.setTimes(&out.Attr)
	return 0
}

// fileNode is a file of the current tree
type fileNode struct {
	fs.Inode
	view *View
	path string
}

var _ = (fs.NodeOpener)((*fileNode)(nil))
var _ = (fs.NodeReader)((*fileNode)(nil))
var _ = (fs.NodeGetattrer)((*fileNode)(nil))

func (n *fileNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	return nil, fuse.FOPEN_DIRECT_IO, 0
}

func (n *fileNode) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	node, ok := n.view.stat(n.path)
	if !ok || node.IsDir() {
		return nil, syscall.ENOENT
	}
	return fuse.ReadResultData(readAt([]byte(node.Content()), dest, off)), 0
}

func (n *fileNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	node, ok := n.view.stat(n.path)
	if !ok {
		return syscall.ENOENT
	}
	fillAttr(&out.Attr, node)
	n.view.setTimes(&out.Attr)
	return 0
}

func (v *View) embed(n *vfs.Node) (fs.InodeEmbedder, uint32) {
	if n.IsDir() {
		return &dirNode{view: v, path: n.Path()}, fuse.S_IFDIR
	}
	return &fileNode{view: v, path: n.Path()}, fuse.S_IFREG
}

func fillAttr(attr *fuse.Attr, n *vfs.Node) {
	if n.IsDir() {
		attr.Mode = dirMode
		return
	}
	attr.Mode = fileMode
	attr.Size = uint64(len(n.Content()))
}

func readAt(data, dest []byte, off int64) []byte {
	if off >= int64(len(data)) {
		return nil
	}
	n := copy(dest, data[off:])
	return dest[:n]
}
