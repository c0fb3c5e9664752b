// Package repository reads inventory rows from the primary store. It never writes:
// the primary store is the system of record and this service only projects it.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	apperrors "github.com/rentaldesk/searchsync/internal/errors"
	recordsDomain "github.com/rentaldesk/searchsync/internal/records/domain"
)

// MaxIDsPerQuery caps the size of one IN (...) list. Callers batch ids below it.
const MaxIDsPerQuery = 1000

// sqlInventoryRepository holds the queries shared by every driver; only the
// placeholder format differs.
type sqlInventoryRepository struct {
	db      *sql.DB
	builder squirrel.StatementBuilderType
}

// ListItemIDs returns every inventory item id in ascending order.
func (r *sqlInventoryRepository) ListItemIDs(ctx context.Context) ([]int64, error) {
	query, args, err := r.builder.
		Select("id").
		From("inventory_items").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build item ids query")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list item ids")
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan item id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate item ids")
	}
	return ids, nil
}

// ListItemsByIDs returns the stored items among ids, ordered by id. Missing ids are
// simply absent from the result.
func (r *sqlInventoryRepository) ListItemsByIDs(
	ctx context.Context,
	ids []int64,
) ([]*recordsDomain.InventoryItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if err := checkBatch(ids); err != nil {
		return nil, err
	}

	query, args, err := r.builder.
		Select("id", "name", "category", "category_counter", "image_url", "description", "created_at", "updated_at").
		From("inventory_items").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build items query")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list items")
	}
	defer func() { _ = rows.Close() }()

	var items []*recordsDomain.InventoryItem
	for rows.Next() {
		var item recordsDomain.InventoryItem
		var imageURL, description sql.NullString
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Category,
			&item.CategoryCounter,
			&imageURL,
			&description,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan item")
		}
		item.ImageURL = nullStringPtr(imageURL)
		item.Description = nullStringPtr(description)
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate items")
	}
	return items, nil
}

// ListSizesByItemIDs returns the stored size rows of the given items.
func (r *sqlInventoryRepository) ListSizesByItemIDs(
	ctx context.Context,
	itemIDs []int64,
) ([]recordsDomain.InventorySizeRow, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	if err := checkBatch(itemIDs); err != nil {
		return nil, err
	}

	query, args, err := r.builder.
		Select("id", "item_id", "title", "quantity", "on_hand", "price").
		From("inventory_sizes").
		Where(squirrel.Eq{"item_id": itemIDs}).
		OrderBy("item_id ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build sizes query")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sizes")
	}
	defer func() { _ = rows.Close() }()

	var sizes []recordsDomain.InventorySizeRow
	for rows.Next() {
		var size recordsDomain.InventorySizeRow
		if err := rows.Scan(&size.ID, &size.ItemID, &size.Title, &size.Quantity, &size.OnHand, &size.Price); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan size")
		}
		sizes = append(sizes, size)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate sizes")
	}
	return sizes, nil
}

// ListTagsByItemIDs returns the tags of the given items resolved through the
// join table. Tag names are still encrypted.
func (r *sqlInventoryRepository) ListTagsByItemIDs(
	ctx context.Context,
	itemIDs []int64,
) ([]recordsDomain.ItemTag, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	if err := checkBatch(itemIDs); err != nil {
		return nil, err
	}

	query, args, err := r.builder.
		Select("it.item_id", "t.id", "t.name").
		From("inventory_item_tags it").
		Join("tags t ON t.id = it.tag_id").
		Where(squirrel.Eq{"it.item_id": itemIDs}).
		OrderBy("it.item_id ASC", "t.id ASC").
		ToSql()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build tags query")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tags")
	}
	defer func() { _ = rows.Close() }()

	var tags []recordsDomain.ItemTag
	for rows.Next() {
		var tag recordsDomain.ItemTag
		if err := rows.Scan(&tag.ItemID, &tag.TagID, &tag.Name); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan tag")
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tags")
	}
	return tags, nil
}

func checkBatch(ids []int64) error {
	if len(ids) > MaxIDsPerQuery {
		return fmt.Errorf("%w: %d ids exceeds the per-query limit of %d",
			apperrors.ErrInvalidInput, len(ids), MaxIDsPerQuery)
	}
	return nil
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
