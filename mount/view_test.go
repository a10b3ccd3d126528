package mount

import (
	"context"
	"syscall"
	"testing"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/tools"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createView(t *testing.T) *View {
	t.Helper()
	v := NewView()
	require.NoError(t, v.Update(projectfs.Snapshot{
		{Path: "/", Type: projectfs.DirectoryType},
		{Path: "/src", Type: projectfs.DirectoryType},
		{Path: "/src/a.js", Type: projectfs.FileType, Content: "hello world"},
		{Path: "/App.jsx", Type: projectfs.FileType, Content: "<App/>"},
	}))
	return v
}

func readDir(t *testing.T, n *dirNode) []fuse.DirEntry {
	t.Helper()
	stream, errno := n.Readdir(context.Background())
	require.Equal(t, syscall.Errno(0), errno)
	var entries []fuse.DirEntry
	for stream.HasNext() {
		e, errno := stream.Next()
		require.Equal(t, syscall.Errno(0), errno)
		entries = append(entries, e)
	}
	return entries
}

func TestView_Readdir(t *testing.T) {
	t.Parallel()

	v := createView(t)
	root := v.Root().(*dirNode)

	entries := readDir(t, root)

	require.Len(t, entries, 2)
	assert.Equal(t, "src", entries[0].Name)
	assert.Equal(t, uint32(fuse.S_IFDIR), entries[0].Mode)
	assert.Equal(t, "App.jsx", entries[1].Name)
	assert.Equal(t, uint32(fuse.S_IFREG), entries[1].Mode)
}

func TestView_FileRead(t *testing.T) {
	t.Parallel()

	v := createView(t)
	f := &fileNode{view: v, path: "/src/a.js"}

	var attr fuse.AttrOut
	require.Equal(t, syscall.Errno(0), f.Getattr(context.Background(), nil, &attr))
	assert.Equal(t, uint64(len("hello world")), attr.Size)
	assert.Equal(t, uint32(fileMode), attr.Mode)

	buf := make([]byte, 5)
	res, errno := f.Read(context.Background(), nil, buf, 6)
	require.Equal(t, syscall.Errno(0), errno)
	data, _ := res.Bytes(nil)
	assert.Equal(t, "world", string(data))

	res, _ = f.Read(context.Background(), nil, buf, 100)
	data, _ = res.Bytes(nil)
	assert.Empty(t, data)
}

func TestView_ReadOnly(t *testing.T) {
	t.Parallel()

	f := &fileNode{view: createView(t), path: "/App.jsx"}

	_, _, errno := f.Open(context.Background(), syscall.O_RDWR)
	assert.Equal(t, syscall.EROFS, errno)
	_, _, errno = f.Open(context.Background(), syscall.O_RDONLY)
	assert.Equal(t, syscall.Errno(0), errno)
}

func TestView_FollowsChanges(t *testing.T) {
	t.Parallel()

	v := createView(t)
	f := &fileNode{view: v, path: "/App.jsx"}
	dir := &dirNode{view: v, path: "/src"}

	v.OnChange(tools.Event{Kind: tools.EventDeleted, Path: "/src", Tree: projectfs.Snapshot{
		{Path: "/", Type: projectfs.DirectoryType},
		{Path: "/App.jsx", Type: projectfs.FileType, Content: "<Main/>"},
	}})

	var attr fuse.AttrOut
	require.Equal(t, syscall.Errno(0), f.Getattr(context.Background(), nil, &attr))
	assert.Equal(t, uint64(len("<Main/>")), attr.Size)
	assert.Equal(t, syscall.ENOENT, dir.Getattr(context.Background(), nil, &attr))
	_, errno := dir.Readdir(context.Background())
	assert.Equal(t, syscall.ENOENT, errno)
}

func TestView_IgnoresBadTrees(t *testing.T) {
	t.Parallel()

	v := createView(t)

	v.OnChange(tools.Event{Tree: projectfs.Snapshot{{Path: "bad", Type: projectfs.FileType}}})
	v.OnChange(tools.Event{})

	_, ok := v.stat("/App.jsx")
	assert.True(t, ok, "previous tree stays visible")
}

func TestView_UnmountWithoutMount(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewView().Unmount())
}
