// Package adapters reads project snapshots from where they are kept: local
// files or HTTP endpoints. A reference is resolved to an [Adapter] through a
// [Provider] registered for its URL scheme.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/internal/util"
)

// Adapter opens the raw bytes behind one reference
type Adapter interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Provider builds adapters for references of one scheme
type Provider interface {
	NewAdapter(ref string) (Adapter, error)
}

// Registry maps URL schemes to providers
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register ties a provider to a scheme. The first registration for a scheme wins.
func (r *Registry) Register(scheme string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[scheme]; ok {
		return
	}
	r.providers[scheme] = p
}

// GetProvider returns the provider registered for scheme
func (r *Registry) GetProvider(scheme string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[scheme]
	if !ok {
		return nil, fmt.Errorf("no provider for %q", scheme)
	}
	return p, nil
}

// Resolve picks the adapter for ref. References without a scheme are local
// file paths.
func (r *Registry) Resolve(ref string) (Adapter, error) {
	p, err := r.GetProvider(schemeOf(ref))
	if err != nil {
		return nil, err
	}
	return p.NewAdapter(ref)
}

// Open resolves ref and opens it
func (r *Registry) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	a, err := r.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return a.Open(ctx)
}

// LoadSnapshot reads and decodes the snapshot behind ref
func (r *Registry) LoadSnapshot(ctx context.Context, ref string) (projectfs.Snapshot, error) {
	logger := util.GetLogger("Adapters")

	rc, err := r.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var snap projectfs.Snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", ref, err)
	}
	logger.Debug().Str("ref", ref).Int("entries", len(snap)).Msg("Snapshot loaded")
	return snap, nil
}

func schemeOf(ref string) string {
	ref = strings.TrimSpace(ref)
	if !strings.Contains(ref, "://") {
		return FileAdapterType
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" {
		return FileAdapterType
	}
	return strings.ToLower(u.Scheme)
}
