package store

import (
	"context"

	"github.com/brettbedarf/projectfs"
	"golang.org/x/sync/singleflight"
)

// Coalescing wraps a Store so concurrent loads of the same project share one
// backend read.
type Coalescing struct {
	next Store
	sf   singleflight.Group
}

func NewCoalescing(next Store) *Coalescing {
	return &Coalescing{next: next}
}

// Load joins an in-flight load of projectID if there is one. The shared read
// does not stop when the caller that started it goes away; each caller only
// waits as long as its own ctx allows. Each caller gets its own copy of the
// result.
func (c *Coalescing) Load(ctx context.Context, projectID string) (projectfs.Snapshot, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(projectID, func() (interface{}, error) {
		return c.next.Load(shared, projectID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return clone(res.Val.(projectfs.Snapshot)), nil
	}
}

// Save writes through and makes the next Load start a fresh read
func (c *Coalescing) Save(ctx context.Context, projectID string, snap projectfs.Snapshot) error {
	err := c.next.Save(ctx, projectID, snap)
	c.sf.Forget(projectID)
	return err
}

func (c *Coalescing) Close() error {
	return c.next.Close()
}
