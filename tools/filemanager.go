package tools

import (
	"context"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/requests"
	"github.com/brettbedarf/projectfs/vfs"
)

// handleFileManager serves the file_manager tool
func handleFileManager(_ context.Context, fsys *vfs.FileSystem, cmd requests.Command) (string, *Event, error) {
	switch c := cmd.(type) {
	case requests.RenameCommand:
		if err := fsys.Rename(c.Path, c.NewPath); err != nil {
			return "", nil, err
		}
		from, to := canonical(c.Path), canonical(c.NewPath)
		ev := &Event{Tool: c.Tool(), Command: c.Name(), Kind: EventRenamed, Path: from, NewPath: to}
		return "Successfully renamed " + from + " to " + to, ev, nil

	case requests.DeleteCommand:
		removed, err := fsys.DeleteFile(c.Path)
		if err != nil {
			return "", nil, err
		}
		p := canonical(c.Path)
		if !removed && p == vfs.RootPath {
			return "", nil, &vfs.PathError{Op: "delete", Path: p, Err: vfs.ErrInvalidPath, Msg: "Cannot delete the root directory"}
		}
		if !removed {
			return "", nil, &vfs.PathError{Op: "delete", Path: p, Err: vfs.ErrNotFound, Msg: "Failed to delete " + p + ": file not found"}
		}
		ev := &Event{Tool: c.Tool(), Command: c.Name(), Kind: EventDeleted, Path: p}
		return "Successfully deleted " + p, ev, nil
	}
	return "", nil, unsupported(projectfs.FileManager, cmd)
}
