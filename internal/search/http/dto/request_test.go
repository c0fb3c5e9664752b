package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemEventData_Validate(t *testing.T) {
	t.Run("Success_PositiveID", func(t *testing.T) {
		data := ItemEventData{ID: 12}
		assert.NoError(t, data.Validate())
	})

	t.Run("Error_MissingID", func(t *testing.T) {
		data := ItemEventData{}
		err := data.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "id")
	})

	t.Run("Error_NegativeID", func(t *testing.T) {
		data := ItemEventData{ID: -4}
		assert.Error(t, data.Validate())
	})
}

func TestValidateEventType(t *testing.T) {
	for _, eventType := range []string{EventItemCreated, EventItemUpdated, EventItemDeleted} {
		assert.NoError(t, ValidateEventType(eventType), eventType)
	}

	assert.Error(t, ValidateEventType(""))
	err := ValidateEventType("order.created")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "inventory.item.created")
}

func TestReindexRequest_Validate(t *testing.T) {
	t.Run("Success_EmptyMeansAll", func(t *testing.T) {
		req := ReindexRequest{}
		assert.NoError(t, req.Validate())
	})

	t.Run("Success_ExplicitIDs", func(t *testing.T) {
		req := ReindexRequest{IDs: []int64{1, 2, 3}}
		assert.NoError(t, req.Validate())
	})

	t.Run("Error_NonPositiveID", func(t *testing.T) {
		req := ReindexRequest{IDs: []int64{1, 0}}
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ids")
	})

	t.Run("Error_TooManyIDs", func(t *testing.T) {
		req := ReindexRequest{IDs: make([]int64, maxReindexIDs+1)}
		assert.Error(t, req.Validate())
	})
}

func TestSearchRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		shouldErr bool
	}{
		{name: "object", query: `{"query":{"match_all":{}}}`, shouldErr: false},
		{name: "empty", query: ``, shouldErr: true},
		{name: "null", query: `null`, shouldErr: true},
		{name: "array", query: `[1,2]`, shouldErr: true},
		{name: "not json", query: `q=dress`, shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := SearchRequest{Query: json.RawMessage(tt.query)}
			if tt.shouldErr {
				assert.Error(t, req.Validate())
			} else {
				assert.NoError(t, req.Validate())
			}
		})
	}
}
