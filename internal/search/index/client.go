// Package index talks to the external search backend. One Client interface is
// implemented by an OpenSearch adapter and a Typesense adapter; the rest of the
// service never knows which one is configured.
package index

import (
	"context"
	"encoding/json"

	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
)

// Supported backends.
const (
	BackendOpenSearch = "opensearch"
	BackendTypesense  = "typesense"
)

// Client is the capability set every search backend provides.
//
// Write operations are idempotent: upserting a document replaces it by id and
// deleting an absent document or index succeeds.
type Client interface {
	// Backend returns the backend name.
	Backend() string

	// Ping checks the backend is reachable and healthy.
	Ping(ctx context.Context) error

	// EnsureSchema creates the index or collection name when it does not exist.
	EnsureSchema(ctx context.Context, name string) error

	// Upsert creates or replaces one document.
	Upsert(ctx context.Context, name string, doc *searchDomain.SearchDocument) error

	// BulkUpsert creates or replaces docs in one request. The result holds one
	// entry per document, in input order. The error is non-nil only when the
	// request as a whole failed and no per-document outcome is known.
	BulkUpsert(ctx context.Context, name string, docs []*searchDomain.SearchDocument) (searchDomain.BulkResult, error)

	// Delete removes one document. Deleting an absent document is not an error.
	Delete(ctx context.Context, name, id string) error

	// DeleteSchema drops the index or collection. Dropping an absent one is not an error.
	DeleteSchema(ctx context.Context, name string) error

	// Search runs a backend-native query and returns the raw response.
	Search(ctx context.Context, name string, query json.RawMessage) (json.RawMessage, error)
}
