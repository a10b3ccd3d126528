package adapters

import (
	"net/http"

	"github.com/spf13/afero"
)

type BuiltInAdapterType = string

const (
	FileAdapterType  BuiltInAdapterType = "file"
	HTTPAdapterType  BuiltInAdapterType = "http"
	HTTPSAdapterType BuiltInAdapterType = "https"
)

// RegisterBuiltins registers all built-in providers by default
// or only the specific ones if keys are provided
func RegisterBuiltins(r *Registry, adapters ...BuiltInAdapterType) {
	if len(adapters) == 0 {
		adapters = append(adapters, FileAdapterType, HTTPAdapterType, HTTPSAdapterType)
	}

	for _, key := range adapters {
		switch key {
		case FileAdapterType:
			RegisterFile(r, afero.NewOsFs())
		case HTTPAdapterType, HTTPSAdapterType:
			r.Register(key, &HTTPProvider{Client: http.DefaultClient})
		}
	}
}

// DefaultRegistry returns a registry with every built-in provider
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}
