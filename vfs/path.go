package vfs

import (
	"errors"
	"strings"
)

// RootPath is the canonical path of the tree root
const RootPath = "/"

// Normalize validates raw and returns its canonical form: absolute,
// slash-delimited, no trailing slash (except the root) and no empty,
// "." or ".." segments. A single trailing slash is tolerated and dropped.
func Normalize(raw string) (string, error) {
	if raw == "" {
		return "", newPathError("normalize", raw, ErrInvalidPath, "Invalid path: path is empty")
	}
	if !strings.HasPrefix(raw, "/") {
		return "", newPathError("normalize", raw, ErrInvalidPath, "Invalid path %q: path must be absolute", raw)
	}
	if raw == RootPath {
		return RootPath, nil
	}

	p := strings.TrimSuffix(raw, "/")
	for _, seg := range strings.Split(p[1:], "/") {
		switch seg {
		case "":
			return "", newPathError("normalize", raw, ErrInvalidPath, "Invalid path %q: empty path segment", raw)
		case ".", "..":
			return "", newPathError("normalize", raw, ErrInvalidPath, "Invalid path %q: relative segment %q", raw, seg)
		}
	}
	return p, nil
}

// normalizeFor is [Normalize] with the error attributed to op
func normalizeFor(op, raw string) (string, error) {
	p, err := Normalize(raw)
	if err != nil {
		var pe *PathError
		if errors.As(err, &pe) {
			pe.Op = op
		}
		return "", err
	}
	return p, nil
}

// Segments splits a canonical path into its names. The root has none.
func Segments(path string) []string {
	if path == RootPath || path == "" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// ParentOf returns the path of the directory containing path.
// ok is false for the root.
func ParentOf(path string) (parent string, ok bool) {
	if path == RootPath || path == "" {
		return "", false
	}
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return RootPath, true
	}
	return path[:idx], true
}

// Filename returns the final segment of path, or "root" for the root itself.
func Filename(path string) string {
	if path == "" || path == RootPath {
		return "root"
	}
	idx := strings.LastIndex(path, "/")
	if name := path[idx+1:]; name != "" {
		return name
	}
	return "root"
}

// Join appends name to the canonical directory path parent
func Join(parent, name string) string {
	if parent == RootPath {
		return RootPath + name
	}
	return parent + "/" + name
}

// isWithin reports whether path is base or one of its descendants
func isWithin(path, base string) bool {
	if base == RootPath {
		return true
	}
	return path == base || strings.HasPrefix(path, base+"/")
}
