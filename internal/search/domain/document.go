// Package domain defines the search projection of inventory items and the
// bookkeeping types of index synchronization.
//
// A SearchDocument is always plaintext. It is a cache owned by the search index
// and can be rebuilt from the primary store at any time.
package domain

import (
	"strconv"
	"time"
)

// SearchDocument is the denormalized, plaintext projection of one inventory item.
type SearchDocument struct {
	// ID is the inventory item id rendered as a decimal string.
	ID          string         `json:"id"`
	FormattedID string         `json:"formattedId"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	Sizes       []SizeDocument `json:"sizes"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	// CreatedAt and UpdatedAt are Unix milliseconds so both backends can sort on them.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`

	NameNormalized     string `json:"nameNormalized"`
	CategoryNormalized string `json:"categoryNormalized"`
	Description        string `json:"description,omitempty"`
}

// SizeDocument is one size of an item inside a SearchDocument.
type SizeDocument struct {
	Title    string `json:"title"`
	Quantity int64  `json:"quantity"`
	OnHand   int64  `json:"onHand"`
	Price    int64  `json:"price"`
}

// DocumentID renders an item id the way SearchDocument.ID stores it.
func DocumentID(itemID int64) string {
	return strconv.FormatInt(itemID, 10)
}

// ParseDocumentID parses a SearchDocument.ID back into an item id.
func ParseDocumentID(id string) (int64, error) {
	itemID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || itemID <= 0 {
		return 0, ErrInvalidItemID
	}
	return itemID, nil
}

// UnixMillis converts t to the timestamp representation used in documents.
// The zero time maps to 0.
func UnixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
