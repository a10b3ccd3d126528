package vfs

import (
	"errors"
	"fmt"
)

// Error conditions surfaced by the node store, patch engine and serializer.
// Match them with errors.Is; the concrete error is usually a [*PathError].
var (
	ErrInvalidPath    = errors.New("invalid path")
	ErrParentMissing  = errors.New("parent directory missing")
	ErrAlreadyExists  = errors.New("already exists")
	ErrNotFound       = errors.New("not found")
	ErrNotAFile       = errors.New("not a file")
	ErrNotADirectory  = errors.New("not a directory")
	ErrNoMatch        = errors.New("no match")
	ErrAmbiguousMatch = errors.New("ambiguous match")
	ErrOutOfRange     = errors.New("out of range")
	ErrCorrupt        = errors.New("corrupt snapshot")
	ErrNothingToUndo  = errors.New("nothing to undo")
)

// PathError records a failed operation, the path it failed on and the cause.
// Msg is the human-readable rendering handed back to the agent.
type PathError struct {
	Op   string
	Path string
	Err  error
	Msg  string
}

func (e *PathError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func newPathError(op, path string, err error, format string, args ...any) *PathError {
	return &PathError{
		Op:   op,
		Path: path,
		Err:  err,
		Msg:  fmt.Sprintf(format, args...),
	}
}
