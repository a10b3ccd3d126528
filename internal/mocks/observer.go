package mocks

import (
	"github.com/brettbedarf/projectfs/tools"
	"github.com/stretchr/testify/mock"
)

// MockObserver implements tools.Observer for testing across packages
type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) OnChange(ev tools.Event) {
	m.Called(ev)
}

var _ tools.Observer = (*MockObserver)(nil)
