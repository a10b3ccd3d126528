package tools

import (
	"encoding/json"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/vfs"
)

// maxLabelName is the longest filename shown in a label
const maxLabelName = 40

// Label returns the short human-readable description a client shows for a
// tool call, e.g. "Editing App.jsx". It never fails: malformed arguments
// fall back to a generic label.
func Label(call *projectfs.ToolCall) string {
	var args struct {
		Command string `json:"command"`
		Path    string `json:"path"`
		NewPath string `json:"new_path"`
	}
	if raw := call.Arguments(); raw != nil {
		// best effort; fields of the wrong type just stay empty
		_ = json.Unmarshal(raw, &args)
	}
	return LabelFor(call.ToolName, args.Command, args.Path, args.NewPath)
}

// LabelFor builds a label from already extracted arguments
func LabelFor(tool projectfs.ToolName, command projectfs.CommandName, path, newPath string) string {
	switch tool {
	case projectfs.StrReplaceEditor:
		return editorLabel(command, path)
	case projectfs.FileManager:
		return fileManagerLabel(command, path, newPath)
	case "":
		return "unknown"
	default:
		return tool
	}
}

func editorLabel(command, path string) string {
	if command == "" {
		return "File operation"
	}
	name := labelName(path)
	switch command {
	case projectfs.CommandView:
		return withName("Viewing", name, "file")
	case projectfs.CommandCreate:
		return withName("Creating", name, "file")
	case projectfs.CommandStrReplace, projectfs.CommandInsert:
		return withName("Editing", name, "file")
	case projectfs.CommandUndoEdit:
		return "Undoing changes"
	default:
		if name == "" {
			return "File operation"
		}
		return "Processing " + name
	}
}

func fileManagerLabel(command, path, newPath string) string {
	switch command {
	case projectfs.CommandDelete:
		return withName("Deleting", labelName(path), "file")
	case projectfs.CommandRename:
		from, to := labelName(path), labelName(newPath)
		switch {
		case from != "" && to != "":
			return "Renaming " + from + " → " + to
		case from != "":
			return "Renaming " + from
		default:
			return "Renaming file"
		}
	default:
		return "File operation"
	}
}

func withName(verb, name, fallback string) string {
	if name == "" {
		return verb + " " + fallback
	}
	return verb + " " + name
}

// labelName is the truncated final segment of path, "" when path is empty
func labelName(path string) string {
	if path == "" {
		return ""
	}
	return truncateName(vfs.Filename(path), maxLabelName)
}

// truncateName shortens name to max runes, keeping a short extension intact
func truncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	if dot := lastIndexRune(runes, '.'); dot > 0 && dot > max-10 {
		ext := runes[dot:]
		keep := max - len(ext) - 3
		if keep < 0 {
			keep = 0
		}
		if keep > dot {
			keep = dot
		}
		return string(runes[:keep]) + "..." + string(ext)
	}
	return string(runes[:max-3]) + "..."
}

func lastIndexRune(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
