// Package projectfs contains the wire-level domain types shared by the VFS,
// the tool-command executor and the transports around them.
package projectfs

import (
	"bytes"
	"encoding/json"
)

// ToolName identifies one of the tools the agent may call
type ToolName = string

const (
	StrReplaceEditor ToolName = "str_replace_editor"
	FileManager      ToolName = "file_manager"
)

// CommandName is the `command` discriminator inside a tool's arguments
type CommandName = string

const (
	CommandView       CommandName = "view"
	CommandCreate     CommandName = "create"
	CommandStrReplace CommandName = "str_replace"
	CommandInsert     CommandName = "insert"
	CommandUndoEdit   CommandName = "undo_edit"
	CommandRename     CommandName = "rename"
	CommandDelete     CommandName = "delete"
)

// ToolCall is a single agent-issued tool invocation as received on the wire.
// Newer clients put the arguments under "input", older ones under "args".
type ToolCall struct {
	ID       string          `json:"toolCallId,omitempty"`
	ToolName ToolName        `json:"toolName"`
	Input    json.RawMessage `json:"input,omitempty"`
	Args     json.RawMessage `json:"args,omitempty"`
}

// Arguments returns the raw argument bag, preferring Input over Args.
// Returns nil when neither carries a value or c is nil.
func (c *ToolCall) Arguments() json.RawMessage {
	if c == nil {
		return nil
	}
	if hasValue(c.Input) {
		return c.Input
	}
	if hasValue(c.Args) {
		return c.Args
	}
	return nil
}

func hasValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
