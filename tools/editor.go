package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/requests"
	"github.com/brettbedarf/projectfs/vfs"
)

// EmptyDirListing is what viewing an empty directory returns
const EmptyDirListing = "(empty directory)"

// handleEditor serves the str_replace_editor tool
func handleEditor(_ context.Context, fsys *vfs.FileSystem, cmd requests.Command) (string, *Event, error) {
	switch c := cmd.(type) {
	case requests.ViewCommand:
		out, err := view(fsys, c.Path)
		return out, nil, err

	case requests.CreateCommand:
		if err := fsys.CreateFileWithParents(c.Path, c.FileText); err != nil {
			return "", nil, err
		}
		p := canonical(c.Path)
		return "File created: " + p, editorEvent(c, EventCreated, p), nil

	case requests.StrReplaceCommand:
		if err := fsys.ReplaceInFile(c.Path, c.OldStr, c.NewStr); err != nil {
			return "", nil, err
		}
		p := canonical(c.Path)
		return "Replaced text in " + p, editorEvent(c, EventModified, p), nil

	case requests.InsertCommand:
		if err := fsys.InsertInFile(c.Path, c.Line, c.NewStr); err != nil {
			return "", nil, err
		}
		p := canonical(c.Path)
		return fmt.Sprintf("Text inserted at line %d in %s", c.Line, p), editorEvent(c, EventModified, p), nil

	case requests.UndoEditCommand:
		if err := fsys.UndoEdit(c.Path); err != nil {
			return "", nil, err
		}
		p := canonical(c.Path)
		kind := EventModified
		if _, ok := fsys.Stat(p); !ok {
			kind = EventDeleted
		}
		return "Undid last edit to " + p, editorEvent(c, kind, p), nil
	}
	return "", nil, unsupported(projectfs.StrReplaceEditor, cmd)
}

// view returns a file's content verbatim or a one-entry-per-line listing of
// a directory
func view(fsys *vfs.FileSystem, path string) (string, error) {
	p, err := vfs.Normalize(path)
	if err != nil {
		return "", err
	}
	n, ok := fsys.Stat(p)
	if !ok {
		return "", &vfs.PathError{Op: "view", Path: p, Err: vfs.ErrNotFound, Msg: "File not found: " + p}
	}
	if !n.IsDir() {
		return n.Content(), nil
	}

	children := n.Children()
	if len(children) == 0 {
		return EmptyDirListing, nil
	}
	lines := make([]string, 0, len(children))
	for _, child := range children {
		if child.IsDir() {
			lines = append(lines, "[DIR] "+child.Name())
		} else {
			lines = append(lines, "[FILE] "+child.Name())
		}
	}
	return strings.Join(lines, "\n"), nil
}

func editorEvent(cmd requests.Command, kind EventKind, path string) *Event {
	return &Event{Tool: cmd.Tool(), Command: cmd.Name(), Kind: kind, Path: path}
}

// canonical normalizes a path that an operation already accepted
func canonical(path string) string {
	if p, err := vfs.Normalize(path); err == nil {
		return p
	}
	return path
}

func unsupported(tool projectfs.ToolName, cmd requests.Command) error {
	return &requests.InvalidCommandError{Tool: tool, Reason: fmt.Sprintf("unsupported command %q", cmd.Name())}
}
