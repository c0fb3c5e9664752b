// Package usecase keeps the search index in step with the primary store. Single
// item syncs react to create, update and delete events; bulk resyncs rebuild the
// index from scratch in batches. Neither ever fails the caller's primary write.
package usecase

import (
	"context"
	"encoding/json"

	recordsDomain "github.com/rentaldesk/searchsync/internal/records/domain"
	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
	"github.com/rentaldesk/searchsync/internal/search/index"
	searchService "github.com/rentaldesk/searchsync/internal/search/service"
)

// InventoryRepository reads inventory rows from the primary store.
type InventoryRepository interface {
	ListItemIDs(ctx context.Context) ([]int64, error)
	ListItemsByIDs(ctx context.Context, ids []int64) ([]*recordsDomain.InventoryItem, error)
	ListSizesByItemIDs(ctx context.Context, itemIDs []int64) ([]recordsDomain.InventorySizeRow, error)
	ListTagsByItemIDs(ctx context.Context, itemIDs []int64) ([]recordsDomain.ItemTag, error)
}

// DocumentBuilder turns stored rows into a SearchDocument.
type DocumentBuilder interface {
	Build(input searchService.BuildInput) (*searchDomain.SearchDocument, error)
}

// SyncUseCase projects inventory items into the search index.
type SyncUseCase interface {
	// SyncCreate indexes a newly created item. Failures are logged, never returned;
	// the result is SyncDone or SyncFailed.
	SyncCreate(ctx context.Context, itemID int64) searchDomain.SyncState

	// SyncUpdate re-indexes an updated item. An item that no longer exists is
	// removed from the index.
	SyncUpdate(ctx context.Context, itemID int64) searchDomain.SyncState

	// SyncDelete removes an item from the index. Removing an absent item succeeds.
	SyncDelete(ctx context.Context, itemID int64) searchDomain.SyncState

	// SyncMany rebuilds the documents of ids with batched fetches and chunked bulk
	// upserts. It never fails; the outcome is reported in the result.
	SyncMany(ctx context.Context, ids []int64, observer searchDomain.SyncObserver) searchDomain.SyncResult

	// SyncAll runs SyncMany over every item id in the primary store.
	SyncAll(ctx context.Context, observer searchDomain.SyncObserver) (searchDomain.SyncResult, error)

	// InitIndex creates the index when it does not exist.
	InitIndex(ctx context.Context) error

	// RecreateIndex drops the index, creates it again and runs SyncAll.
	RecreateIndex(ctx context.Context, observer searchDomain.SyncObserver) (searchDomain.SyncResult, error)

	// TestConnection checks the backend now and returns the connection status.
	TestConnection(ctx context.Context) index.Status

	// Search runs a backend-native query against the index.
	Search(ctx context.Context, query json.RawMessage) (json.RawMessage, error)
}

// ReindexJobManager runs bulk resyncs in the background for the admin API.
type ReindexJobManager interface {
	// Start launches a resync of ids, or of every item when ids is empty.
	Start(ids []int64) (searchDomain.ReindexJob, error)

	// Get returns a snapshot of one job.
	Get(id string) (searchDomain.ReindexJob, error)

	// List returns job snapshots, newest first.
	List(offset, limit int) []searchDomain.ReindexJob
}
