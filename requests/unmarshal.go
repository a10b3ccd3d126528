package requests

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/brettbedarf/projectfs"
)

// ErrInvalidCommand reports an argument bag that does not describe a valid
// command: unknown tool or command, a missing argument or one of the wrong type.
var ErrInvalidCommand = errors.New("invalid command")

// InvalidCommandError wraps [ErrInvalidCommand] with what was wrong
type InvalidCommandError struct {
	Tool   projectfs.ToolName
	Reason string
}

func (e *InvalidCommandError) Error() string {
	if e.Tool == "" {
		return "Invalid command: " + e.Reason
	}
	return fmt.Sprintf("Invalid %s command: %s", e.Tool, e.Reason)
}

func (e *InvalidCommandError) Unwrap() error {
	return ErrInvalidCommand
}

func invalid(tool projectfs.ToolName, format string, args ...any) error {
	return &InvalidCommandError{Tool: tool, Reason: fmt.Sprintf(format, args...)}
}

// commandTools maps each command to the tool that owns it
var commandTools = map[projectfs.CommandName]projectfs.ToolName{
	projectfs.CommandView:       projectfs.StrReplaceEditor,
	projectfs.CommandCreate:     projectfs.StrReplaceEditor,
	projectfs.CommandStrReplace: projectfs.StrReplaceEditor,
	projectfs.CommandInsert:     projectfs.StrReplaceEditor,
	projectfs.CommandUndoEdit:   projectfs.StrReplaceEditor,
	projectfs.CommandRename:     projectfs.FileManager,
	projectfs.CommandDelete:     projectfs.FileManager,
}

// DecodeCall decodes the arguments of a wire-level tool call
func DecodeCall(call *projectfs.ToolCall) (Command, error) {
	return Decode(call.ToolName, call.Arguments())
}

// DecodeMap decodes an already parsed argument bag
func DecodeMap(tool projectfs.ToolName, args map[string]any) (Command, error) {
	if args == nil {
		return Decode(tool, nil)
	}
	data, err := json.Marshal(args)
	if err != nil {
		return nil, invalid(tool, "arguments are not serializable: %v", err)
	}
	return Decode(tool, data)
}

// Decode turns a tool name and its raw JSON arguments into a typed Command.
// Every failure wraps [ErrInvalidCommand].
func Decode(tool projectfs.ToolName, data json.RawMessage) (Command, error) {
	if tool != projectfs.StrReplaceEditor && tool != projectfs.FileManager {
		return nil, invalid("", "unknown tool %q", tool)
	}
	if len(data) == 0 {
		return nil, invalid(tool, "missing arguments")
	}

	var dto CommandDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, invalid(tool, "%v", err)
	}
	if dto.Command == nil {
		return nil, invalid(tool, "missing required argument \"command\"")
	}
	name := *dto.Command
	if owner, ok := commandTools[name]; !ok || owner != tool {
		return nil, invalid(tool, "unknown command %q", name)
	}
	if dto.Path == nil {
		return nil, invalid(tool, "missing required argument \"path\" for %s", name)
	}
	path := *dto.Path

	switch name {
	case projectfs.CommandView:
		return ViewCommand{Path: path}, nil
	case projectfs.CommandCreate:
		if dto.FileText == nil {
			return nil, missing(tool, name, "file_text")
		}
		return CreateCommand{Path: path, FileText: *dto.FileText}, nil
	case projectfs.CommandStrReplace:
		if dto.OldStr == nil {
			return nil, missing(tool, name, "old_str")
		}
		if dto.NewStr == nil {
			return nil, missing(tool, name, "new_str")
		}
		return StrReplaceCommand{Path: path, OldStr: *dto.OldStr, NewStr: *dto.NewStr}, nil
	case projectfs.CommandInsert:
		if dto.InsertLine == nil {
			return nil, missing(tool, name, "insert_line")
		}
		if dto.NewStr == nil {
			return nil, missing(tool, name, "new_str")
		}
		return InsertCommand{Path: path, Line: int(*dto.InsertLine), NewStr: *dto.NewStr}, nil
	case projectfs.CommandUndoEdit:
		return UndoEditCommand{Path: path}, nil
	case projectfs.CommandRename:
		if dto.NewPath == nil {
			return nil, missing(tool, name, "new_path")
		}
		return RenameCommand{Path: path, NewPath: *dto.NewPath}, nil
	default: // delete
		return DeleteCommand{Path: path}, nil
	}
}

func missing(tool projectfs.ToolName, name projectfs.CommandName, field string) error {
	return invalid(tool, "missing required argument %q for %s", field, name)
}
