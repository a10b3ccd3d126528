package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/requests"
	"github.com/brettbedarf/projectfs/vfs"
)

// Handler applies decoded commands of one tool to a tree. It returns the
// agent-facing output and, for mutations, the event to publish.
type Handler interface {
	Handle(ctx context.Context, fsys *vfs.FileSystem, cmd requests.Command) (string, *Event, error)
}

// HandlerFunc adapts a plain function to [Handler]
type HandlerFunc func(ctx context.Context, fsys *vfs.FileSystem, cmd requests.Command) (string, *Event, error)

func (f HandlerFunc) Handle(ctx context.Context, fsys *vfs.FileSystem, cmd requests.Command) (string, *Event, error) {
	return f(ctx, fsys, cmd)
}

// Registry maps tool names to their handlers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[projectfs.ToolName]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[projectfs.ToolName]Handler)}
}

// Register ties a handler to a tool name. The first registration for a name
// wins; later ones are ignored.
func (r *Registry) Register(tool projectfs.ToolName, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[tool]; exists {
		return
	}
	r.handlers[tool] = h
}

// GetHandler returns the handler registered for tool
func (r *Registry) GetHandler(tool projectfs.ToolName) (Handler, error) {
	r.mu.RLock()
	h, ok := r.handlers[tool]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no handler for %q", tool)
	}
	return h, nil
}

// Tools returns the registered tool names
func (r *Registry) Tools() []projectfs.ToolName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]projectfs.ToolName, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}
