// Package service turns primary-store rows into plaintext search documents.
package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	recordsDomain "github.com/rentaldesk/searchsync/internal/records/domain"
	recordsService "github.com/rentaldesk/searchsync/internal/records/service"
	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
)

// BuildInput is one inventory item as stored, with its joined size and tag rows.
// Item is nil when the item no longer exists.
type BuildInput struct {
	Item  *recordsDomain.InventoryItem
	Sizes []recordsDomain.InventorySizeRow
	Tags  []recordsDomain.ItemTag
}

// DocumentBuilder builds SearchDocuments from stored rows.
type DocumentBuilder struct {
	codec *recordsService.Codec
}

// NewDocumentBuilder creates a DocumentBuilder.
func NewDocumentBuilder(codec *recordsService.Codec) *DocumentBuilder {
	return &DocumentBuilder{codec: codec}
}

// Build decrypts the rows in input and assembles the item's SearchDocument.
//
// It returns searchDomain.ErrItemNotFound when the item is missing and
// searchDomain.ErrMalformedItem when a field of the item or its children fails
// to decrypt or a size has a non-numeric field. Documents never carry ciphertext.
func (b *DocumentBuilder) Build(input BuildInput) (*searchDomain.SearchDocument, error) {
	if input.Item == nil {
		return nil, searchDomain.ErrItemNotFound
	}

	item, undecryptable := b.codec.OpenInventoryItem(*input.Item)
	if len(undecryptable) > 0 {
		return nil, malformed(item.ID, strings.Join(undecryptable, ", ")+" not decryptable")
	}

	sizes, err := b.buildSizes(item.ID, input.Sizes)
	if err != nil {
		return nil, err
	}

	tags, err := b.buildTags(item.ID, input.Tags)
	if err != nil {
		return nil, err
	}

	doc := &searchDomain.SearchDocument{
		ID:                 searchDomain.DocumentID(item.ID),
		FormattedID:        searchDomain.FormattedID(item.Category, item.CategoryCounter),
		Name:               item.Name,
		Category:           item.Category,
		Tags:               tags,
		Sizes:              sizes,
		CreatedAt:          searchDomain.UnixMillis(item.CreatedAt),
		UpdatedAt:          searchDomain.UnixMillis(item.UpdatedAt),
		NameNormalized:     searchDomain.Normalize(item.Name),
		CategoryNormalized: searchDomain.Normalize(item.Category),
	}
	if item.ImageURL != nil {
		doc.ImageURL = *item.ImageURL
	}
	if item.Description != nil {
		doc.Description = strings.TrimSpace(*item.Description)
	}
	return doc, nil
}

func (b *DocumentBuilder) buildSizes(
	itemID int64,
	rows []recordsDomain.InventorySizeRow,
) ([]searchDomain.SizeDocument, error) {
	rows = slices.Clone(rows)
	slices.SortFunc(rows, func(a, b recordsDomain.InventorySizeRow) int {
		return cmp.Compare(a.ID, b.ID)
	})

	sizes := make([]searchDomain.SizeDocument, 0, len(rows))
	for _, row := range rows {
		if row.ItemID != itemID {
			continue
		}
		size, undecryptable := b.codec.OpenInventorySize(row)
		if len(undecryptable) > 0 {
			return nil, malformed(itemID, fmt.Sprintf("size %d %s not decryptable", size.ID, strings.Join(undecryptable, ", ")))
		}
		if !size.Complete() {
			return nil, malformed(itemID, fmt.Sprintf("size %d has a non-numeric field", size.ID))
		}
		sizes = append(sizes, searchDomain.SizeDocument{
			Title:    size.Title,
			Quantity: size.Quantity.Int64,
			OnHand:   size.OnHand.Int64,
			Price:    size.Price.Int64,
		})
	}
	return sizes, nil
}

func (b *DocumentBuilder) buildTags(itemID int64, rows []recordsDomain.ItemTag) ([]string, error) {
	tags := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.ItemID != itemID {
			continue
		}
		tag, ok := b.codec.OpenItemTag(row)
		if !ok {
			return nil, malformed(itemID, fmt.Sprintf("tag %d is not decryptable", tag.TagID))
		}
		if name := strings.TrimSpace(tag.Name); name != "" {
			tags = append(tags, name)
		}
	}
	slices.Sort(tags)
	return slices.Compact(tags), nil
}

func malformed(itemID int64, reason string) error {
	return fmt.Errorf("%w: item %d: %s", searchDomain.ErrMalformedItem, itemID, reason)
}
