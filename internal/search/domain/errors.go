package domain

import (
	"github.com/rentaldesk/searchsync/internal/errors"
)

// Search and synchronization errors.
var (
	// ErrItemNotFound indicates the inventory item no longer exists in the primary store.
	ErrItemNotFound = errors.Wrap(errors.ErrNotFound, "inventory item not found")

	// ErrMalformedItem indicates the item or one of its joined rows could not be
	// turned into a plaintext document (undecryptable text, non-numeric size fields).
	ErrMalformedItem = errors.Wrap(errors.ErrInvalidInput, "malformed inventory item")

	// ErrInvalidItemID indicates an item id is not a positive integer.
	ErrInvalidItemID = errors.Wrap(errors.ErrInvalidInput, "invalid item id")

	// ErrIndexUnavailable indicates the search backend could not be reached.
	ErrIndexUnavailable = errors.Wrap(errors.ErrUnavailable, "search index unavailable")

	// ErrJobNotFound indicates the requested reindex job does not exist.
	ErrJobNotFound = errors.Wrap(errors.ErrNotFound, "reindex job not found")

	// ErrReindexRunning indicates a full reindex is already in progress.
	ErrReindexRunning = errors.Wrap(errors.ErrConflict, "reindex already running")
)
