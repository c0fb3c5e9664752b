package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripDiacritics(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Áo Dài", "Ao Dai"},
		{"Phụ Kiện Lạ", "Phu Kien La"},
		{"Đầm dạ hội", "Dam da hoi"},
		{"đỏ", "do"},
		{"plain", "plain"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, StripDiacritics(tc.input))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ao dai lua do", Normalize("  Áo   Dài Lụa  ĐỎ "))
	assert.Equal(t, "", Normalize("   "))
}

func TestCategoryCode(t *testing.T) {
	testCases := []struct {
		name     string
		category string
		expected string
	}{
		{"known", "Áo Dài", "AD"},
		{"known without diacritics", "ao dai", "AD"},
		{"known with extra spaces", "  Vest ", "VE"},
		{"known Đ", "Đầm", "DM"},
		{"unknown multi word", "Phụ Kiện Lạ", "PK"},
		{"unknown Đ first", "Đồ Bộ", "DB"},
		{"unknown single word", "Mũ", "MU"},
		{"unknown lower case", "túi xách", "TX"},
		{"single letter", "X", "XX"},
		{"punctuation only", "---", "XX"},
		{"empty", "", "XX"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CategoryCode(tc.category))
		})
	}
}

func TestFormattedID(t *testing.T) {
	assert.Equal(t, "AD-000007", FormattedID("Áo Dài", 7))
	assert.Equal(t, "PK-000007", FormattedID("Phụ Kiện Lạ", 7))
	assert.Equal(t, "XX-000000", FormattedID("", 0))
	assert.Equal(t, "VC-123456", FormattedID("Váy Cưới", 123456))
	assert.Equal(t, FormattedID("Áo Dài", 42), FormattedID("Áo Dài", 42))
}

func TestDocumentID(t *testing.T) {
	assert.Equal(t, "42", DocumentID(42))

	id, err := ParseDocumentID("42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "4.2"} {
		_, err := ParseDocumentID(bad)
		assert.ErrorIs(t, err, ErrInvalidItemID, bad)
	}
}

func TestBulkResult(t *testing.T) {
	result := BulkResult{Items: []ItemResult{
		{ID: "1", OK: true},
		{ID: "2", OK: false, Error: "mapper_parsing_exception"},
		{ID: "3", OK: true},
	}}

	assert.Equal(t, 2, result.Succeeded())
	assert.Equal(t, []ItemResult{{ID: "2", OK: false, Error: "mapper_parsing_exception"}}, result.FailedItems())
	assert.Nil(t, BulkResult{}.FailedItems())
}

func TestSyncState_Terminal(t *testing.T) {
	assert.False(t, SyncPending.Terminal())
	assert.False(t, SyncBuilding.Terminal())
	assert.False(t, SyncIndexing.Terminal())
	assert.True(t, SyncDone.Terminal())
	assert.True(t, SyncFailed.Terminal())
}

func TestSyncObserver_NilCallbacks(t *testing.T) {
	assert.NotPanics(t, func() {
		SyncObserver{}.Progress(10)
		SyncObserver{}.Log("hello")
	})

	var got []int
	SyncObserver{OnProgress: func(p int) { got = append(got, p) }}.Progress(30)
	assert.Equal(t, []int{30}, got)
}
