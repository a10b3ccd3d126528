package tools

import (
	"context"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/internal/util"
	"github.com/brettbedarf/projectfs/requests"
	"github.com/brettbedarf/projectfs/vfs"
)

// Executor runs tool calls against one tree. It keeps nothing between calls
// except the tree it was given, and is meant for a single turn.
type Executor struct {
	fsys      *vfs.FileSystem
	registry  *Registry
	observers []Observer
	// treeObservers also get Event.Tree; the tree is only serialized for them
	treeObservers []Observer
}

// ExecutorOption configures an [Executor]
type ExecutorOption func(*Executor)

// WithRegistry replaces the built-in tool registry
func WithRegistry(r *Registry) ExecutorOption {
	return func(e *Executor) { e.registry = r }
}

// WithObserver adds an observer told about every successful mutation.
// Its events carry no Tree.
func WithObserver(o Observer) ExecutorOption {
	return func(e *Executor) { e.observers = append(e.observers, o) }
}

// WithTreeObserver adds an observer whose events carry the full tree as it
// was right after the change
func WithTreeObserver(o Observer) ExecutorOption {
	return func(e *Executor) { e.treeObservers = append(e.treeObservers, o) }
}

func NewExecutor(fsys *vfs.FileSystem, opts ...ExecutorOption) *Executor {
	e := &Executor{fsys: fsys}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = DefaultRegistry()
	}
	return e
}

// FS returns the tree the executor mutates
func (e *Executor) FS() *vfs.FileSystem {
	return e.fsys
}

// Execute decodes and runs one wire-level call. Decoding failures, including
// a nil call, become an error result without touching the tree.
func (e *Executor) Execute(ctx context.Context, call *projectfs.ToolCall) Result {
	if call == nil {
		return Result{Label: LabelFor("", "", "", ""), Err: &requests.InvalidCommandError{Reason: "missing tool call"}}
	}
	res := Result{ToolCallID: call.ID, Tool: call.ToolName, Label: Label(call)}

	cmd, err := requests.DecodeCall(call)
	if err != nil {
		logger := util.GetLogger("Executor")
		logger.Debug().Err(err).Str("tool", call.ToolName).Msg("Rejected tool call")
		res.Err = err
		return res
	}
	out := e.ExecuteCommand(ctx, cmd)
	out.ToolCallID = res.ToolCallID
	out.Label = res.Label
	return out
}

// ExecuteCommand runs an already decoded command
func (e *Executor) ExecuteCommand(ctx context.Context, cmd requests.Command) Result {
	logger := util.GetLogger("Executor")
	res := Result{Tool: cmd.Tool(), Command: cmd.Name(), Label: labelForCommand(cmd)}

	h, err := e.registry.GetHandler(cmd.Tool())
	if err != nil {
		res.Err = &requests.InvalidCommandError{Tool: cmd.Tool(), Reason: err.Error()}
		return res
	}

	out, ev, err := h.Handle(ctx, e.fsys, cmd)
	if err != nil {
		logger.Debug().Err(err).Str("command", cmd.Name()).Str("path", cmd.Target()).Msg("Command failed")
		res.Err = err
		return res
	}
	res.Output = out
	logger.Trace().Str("command", cmd.Name()).Str("path", cmd.Target()).Msg("Command applied")

	if ev == nil {
		return res
	}
	for _, o := range e.observers {
		o.OnChange(*ev)
	}
	if len(e.treeObservers) > 0 {
		ev.Tree = vfs.Serialize(e.fsys)
		for _, o := range e.treeObservers {
			o.OnChange(*ev)
		}
	}
	return res
}

func labelForCommand(cmd requests.Command) string {
	newPath := ""
	if r, ok := cmd.(requests.RenameCommand); ok {
		newPath = r.NewPath
	}
	return LabelFor(cmd.Tool(), cmd.Name(), cmd.Target(), newPath)
}
