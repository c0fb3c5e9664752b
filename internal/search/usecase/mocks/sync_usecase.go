// Package mocks provides mock implementations of the search use cases.
package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
	"github.com/rentaldesk/searchsync/internal/search/index"
)

// MockSyncUseCase is a mock implementation of SyncUseCase.
type MockSyncUseCase struct {
	mock.Mock
}

// NewMockSyncUseCase creates a MockSyncUseCase whose expectations are asserted on cleanup.
func NewMockSyncUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSyncUseCase {
	m := &MockSyncUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// SyncCreate mocks the SyncCreate method.
func (m *MockSyncUseCase) SyncCreate(ctx context.Context, itemID int64) searchDomain.SyncState {
	args := m.Called(ctx, itemID)
	return args.Get(0).(searchDomain.SyncState)
}

// SyncUpdate mocks the SyncUpdate method.
func (m *MockSyncUseCase) SyncUpdate(ctx context.Context, itemID int64) searchDomain.SyncState {
	args := m.Called(ctx, itemID)
	return args.Get(0).(searchDomain.SyncState)
}

// SyncDelete mocks the SyncDelete method.
func (m *MockSyncUseCase) SyncDelete(ctx context.Context, itemID int64) searchDomain.SyncState {
	args := m.Called(ctx, itemID)
	return args.Get(0).(searchDomain.SyncState)
}

// SyncMany mocks the SyncMany method.
func (m *MockSyncUseCase) SyncMany(
	ctx context.Context,
	ids []int64,
	observer searchDomain.SyncObserver,
) searchDomain.SyncResult {
	args := m.Called(ctx, ids, observer)
	return args.Get(0).(searchDomain.SyncResult)
}

// SyncAll mocks the SyncAll method.
func (m *MockSyncUseCase) SyncAll(
	ctx context.Context,
	observer searchDomain.SyncObserver,
) (searchDomain.SyncResult, error) {
	args := m.Called(ctx, observer)
	return args.Get(0).(searchDomain.SyncResult), args.Error(1)
}

// InitIndex mocks the InitIndex method.
func (m *MockSyncUseCase) InitIndex(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// RecreateIndex mocks the RecreateIndex method.
func (m *MockSyncUseCase) RecreateIndex(
	ctx context.Context,
	observer searchDomain.SyncObserver,
) (searchDomain.SyncResult, error) {
	args := m.Called(ctx, observer)
	return args.Get(0).(searchDomain.SyncResult), args.Error(1)
}

// TestConnection mocks the TestConnection method.
func (m *MockSyncUseCase) TestConnection(ctx context.Context) index.Status {
	args := m.Called(ctx)
	return args.Get(0).(index.Status)
}

// Search mocks the Search method.
func (m *MockSyncUseCase) Search(ctx context.Context, query json.RawMessage) (json.RawMessage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
