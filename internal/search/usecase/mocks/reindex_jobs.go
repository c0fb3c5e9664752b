package mocks

import (
	"github.com/stretchr/testify/mock"

	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
)

// MockReindexJobManager is a mock implementation of ReindexJobManager.
type MockReindexJobManager struct {
	mock.Mock
}

// NewMockReindexJobManager creates a MockReindexJobManager whose expectations are asserted on cleanup.
func NewMockReindexJobManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockReindexJobManager {
	m := &MockReindexJobManager{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Start mocks the Start method.
func (m *MockReindexJobManager) Start(ids []int64) (searchDomain.ReindexJob, error) {
	args := m.Called(ids)
	return args.Get(0).(searchDomain.ReindexJob), args.Error(1)
}

// Get mocks the Get method.
func (m *MockReindexJobManager) Get(id string) (searchDomain.ReindexJob, error) {
	args := m.Called(id)
	return args.Get(0).(searchDomain.ReindexJob), args.Error(1)
}

// List mocks the List method.
func (m *MockReindexJobManager) List(offset, limit int) []searchDomain.ReindexJob {
	args := m.Called(offset, limit)
	return args.Get(0).([]searchDomain.ReindexJob)
}
