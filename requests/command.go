package requests

import "github.com/brettbedarf/projectfs"

// Command is a decoded tool command. Each concrete type carries exactly the
// arguments its command needs.
type Command interface {
	Tool() projectfs.ToolName
	Name() projectfs.CommandName
	// Target is the primary path the command acts on
	Target() string
}

type ViewCommand struct {
	Path string
}

type CreateCommand struct {
	Path     string
	FileText string
}

type StrReplaceCommand struct {
	Path   string
	OldStr string
	NewStr string
}

type InsertCommand struct {
	Path   string
	Line   int
	NewStr string
}

type UndoEditCommand struct {
	Path string
}

type RenameCommand struct {
	Path    string
	NewPath string
}

type DeleteCommand struct {
	Path string
}

func (ViewCommand) Tool() projectfs.ToolName       { return projectfs.StrReplaceEditor }
func (CreateCommand) Tool() projectfs.ToolName     { return projectfs.StrReplaceEditor }
func (StrReplaceCommand) Tool() projectfs.ToolName { return projectfs.StrReplaceEditor }
func (InsertCommand) Tool() projectfs.ToolName     { return projectfs.StrReplaceEditor }
func (UndoEditCommand) Tool() projectfs.ToolName   { return projectfs.StrReplaceEditor }
func (RenameCommand) Tool() projectfs.ToolName     { return projectfs.FileManager }
func (DeleteCommand) Tool() projectfs.ToolName     { return projectfs.FileManager }

func (ViewCommand) Name() projectfs.CommandName       { return projectfs.CommandView }
func (CreateCommand) Name() projectfs.CommandName     { return projectfs.CommandCreate }
func (StrReplaceCommand) Name() projectfs.CommandName { return projectfs.CommandStrReplace }
func (InsertCommand) Name() projectfs.CommandName     { return projectfs.CommandInsert }
func (UndoEditCommand) Name() projectfs.CommandName   { return projectfs.CommandUndoEdit }
func (RenameCommand) Name() projectfs.CommandName     { return projectfs.CommandRename }
func (DeleteCommand) Name() projectfs.CommandName     { return projectfs.CommandDelete }

func (c ViewCommand) Target() string       { return c.Path }
func (c CreateCommand) Target() string     { return c.Path }
func (c StrReplaceCommand) Target() string { return c.Path }
func (c InsertCommand) Target() string     { return c.Path }
func (c UndoEditCommand) Target() string   { return c.Path }
func (c RenameCommand) Target() string     { return c.Path }
func (c DeleteCommand) Target() string     { return c.Path }
