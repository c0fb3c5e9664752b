// Package mocks provides mock implementations of the search index client.
package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
)

// MockClient is a mock implementation of index.Client.
type MockClient struct {
	mock.Mock
}

// NewMockClient creates a MockClient whose expectations are asserted on cleanup.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Backend mocks the Backend method.
func (m *MockClient) Backend() string {
	args := m.Called()
	return args.String(0)
}

// Ping mocks the Ping method.
func (m *MockClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// EnsureSchema mocks the EnsureSchema method.
func (m *MockClient) EnsureSchema(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// Upsert mocks the Upsert method.
func (m *MockClient) Upsert(ctx context.Context, name string, doc *searchDomain.SearchDocument) error {
	args := m.Called(ctx, name, doc)
	return args.Error(0)
}

// BulkUpsert mocks the BulkUpsert method.
func (m *MockClient) BulkUpsert(
	ctx context.Context,
	name string,
	docs []*searchDomain.SearchDocument,
) (searchDomain.BulkResult, error) {
	args := m.Called(ctx, name, docs)
	return args.Get(0).(searchDomain.BulkResult), args.Error(1)
}

// Delete mocks the Delete method.
func (m *MockClient) Delete(ctx context.Context, name, id string) error {
	args := m.Called(ctx, name, id)
	return args.Error(0)
}

// DeleteSchema mocks the DeleteSchema method.
func (m *MockClient) DeleteSchema(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// Search mocks the Search method.
func (m *MockClient) Search(ctx context.Context, name string, query json.RawMessage) (json.RawMessage, error) {
	args := m.Called(ctx, name, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
