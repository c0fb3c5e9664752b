// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/json"

	validation "github.com/jellydator/validation"

	customValidation "github.com/rentaldesk/searchsync/internal/validation"
)

// CloudEvents types published by the back office when an inventory item changes.
const (
	EventItemCreated = "inventory.item.created"
	EventItemUpdated = "inventory.item.updated"
	EventItemDeleted = "inventory.item.deleted"
)

// maxReindexIDs bounds an explicit id list; larger resyncs use the full reindex.
const maxReindexIDs = 10000

// ItemEventData is the data payload of an inventory item event.
type ItemEventData struct {
	ID int64 `json:"id"`
}

// Validate checks the event payload.
func (d *ItemEventData) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.ID, validation.Required, customValidation.PositiveID),
	)
}

// ValidateEventType checks that eventType is one this service reacts to.
func ValidateEventType(eventType string) error {
	return validation.Validate(eventType,
		validation.Required,
		validation.In(EventItemCreated, EventItemUpdated, EventItemDeleted).
			Error("must be one of inventory.item.created, inventory.item.updated, inventory.item.deleted"),
	)
}

// ReindexRequest starts a background resync. An empty id list resyncs every item.
type ReindexRequest struct {
	IDs []int64 `json:"ids"`
}

// Validate checks the reindex request.
func (r *ReindexRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.IDs,
			validation.Length(0, maxReindexIDs),
			validation.Each(customValidation.PositiveID),
		),
	)
}

// SearchRequest is a backend-native query passed through unchanged.
type SearchRequest struct {
	Query json.RawMessage
}

// Validate checks that the query is a JSON object.
func (r *SearchRequest) Validate() error {
	return validation.Validate(r.Query,
		validation.Required,
		validation.By(func(value interface{}) error {
			var object map[string]json.RawMessage
			if err := json.Unmarshal(r.Query, &object); err != nil || object == nil {
				return validation.NewError("validation_query_object", "must be a JSON object")
			}
			return nil
		}),
	)
}
