package store

import (
	"context"
	"fmt"

	"github.com/brettbedarf/projectfs/config"
	"github.com/spf13/afero"
)

// Store driver names accepted by [Open] besides the sql drivers
const (
	DriverMemory = "memory"
	DriverFile   = "file"
)

// Open builds the store named by cfg.Store. Backends other than memory are
// wrapped in [Coalescing].
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	opts := cfg.Store
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile:
		fs, err := NewFileStore(afero.NewOsFs(), opts.DSN)
		if err != nil {
			return nil, err
		}
		return NewCoalescing(fs), nil
	case DriverSQLite, DriverMySQL, DriverPostgres:
		s, err := NewSQLStore(ctx, opts.Driver, opts.DSN)
		if err != nil {
			return nil, err
		}
		return NewCoalescing(s), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
