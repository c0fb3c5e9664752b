package domain

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInventorySize_Complete(t *testing.T) {
	valid := sql.NullInt64{Int64: 1, Valid: true}

	assert.True(t, InventorySize{Quantity: valid, OnHand: valid, Price: valid}.Complete())
	assert.False(t, InventorySize{Quantity: valid, OnHand: valid}.Complete())
	assert.False(t, InventorySize{}.Complete())
}
