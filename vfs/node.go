package vfs

import "github.com/brettbedarf/projectfs"

// Node is a single file or directory in the tree. Directory children keep
// their insertion order so listings and snapshots are stable.
//
// Nodes are not safe for concurrent use; [FileSystem] serializes access.
type Node struct {
	name     string // last path segment; "" for the root
	path     string // canonical absolute path, rewritten on rename
	parent   *Node  // nil for the root and for detached nodes
	isDir    bool
	content  string
	children map[string]*Node
	order    []string // child names in insertion order
}

func newDirNode(name, path string) *Node {
	return &Node{
		name:     name,
		path:     path,
		isDir:    true,
		children: make(map[string]*Node),
	}
}

func newFileNode(name, path, content string) *Node {
	return &Node{name: name, path: path, content: content}
}

func (n *Node) Name() string { return n.name }

func (n *Node) Path() string { return n.path }

func (n *Node) IsDir() bool { return n.isDir }

func (n *Node) IsRoot() bool { return n.parent == nil && n.path == RootPath }

// Content returns the file text; always "" for directories
func (n *Node) Content() string { return n.content }

// Type reports the snapshot node kind
func (n *Node) Type() projectfs.NodeType {
	if n.isDir {
		return projectfs.DirectoryType
	}
	return projectfs.FileType
}

// AddChild links child under n and points the child back at its new parent.
// An existing child with the same name is replaced in place.
func (n *Node) AddChild(child *Node) {
	if _, ok := n.children[child.name]; !ok {
		n.order = append(n.order, child.name)
	}
	n.children[child.name] = child
	child.parent = n
}

// GetChild returns the named child
func (n *Node) GetChild(name string) (*Node, bool) {
	child, ok := n.children[name]
	return child, ok
}

// RemoveChild detaches the named child and returns it
func (n *Node) RemoveChild(name string) (*Node, bool) {
	child, ok := n.children[name]
	if !ok {
		return nil, false
	}
	delete(n.children, name)
	for i, c := range n.order {
		if c == name {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
	child.parent = nil
	return child, true
}

// Children returns the direct children in insertion order
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.children[name])
	}
	return out
}

// walk visits n and then its descendants in pre-order. Returning false from
// fn stops the walk.
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, name := range n.order {
		if !n.children[name].walk(fn) {
			return false
		}
	}
	return true
}

// repath rewrites the stored path of n and every descendant below newPath
func (n *Node) repath(newPath string) {
	n.path = newPath
	for _, name := range n.order {
		n.children[name].repath(Join(newPath, name))
	}
}
