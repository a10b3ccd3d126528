package tools

import "github.com/brettbedarf/projectfs"

// RegisterBuiltins registers every built-in tool on r, or only the named
// ones if tools are provided.
func RegisterBuiltins(r *Registry, tools ...projectfs.ToolName) {
	if len(tools) == 0 {
		tools = append(tools, projectfs.StrReplaceEditor, projectfs.FileManager)
	}

	for _, name := range tools {
		switch name {
		case projectfs.StrReplaceEditor:
			r.Register(name, HandlerFunc(handleEditor))
		case projectfs.FileManager:
			r.Register(name, HandlerFunc(handleFileManager))
		}
	}
}

// DefaultRegistry returns a registry with all built-in tools
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}
