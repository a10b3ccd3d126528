package mocks

import (
	"context"

	"github.com/brettbedarf/projectfs"
	"github.com/brettbedarf/projectfs/store"
	"github.com/stretchr/testify/mock"
)

// MockStore implements store.Store for testing across packages
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context, projectID string) (projectfs.Snapshot, error) {
	args := m.Called(ctx, projectID)

	// Handle function return types (for blocking tests)
	if fn, ok := args.Get(0).(func(context.Context, string) projectfs.Snapshot); ok {
		return fn(ctx, projectID), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(projectfs.Snapshot), args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, projectID string, snap projectfs.Snapshot) error {
	args := m.Called(ctx, projectID, snap)
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ store.Store = (*MockStore)(nil)
