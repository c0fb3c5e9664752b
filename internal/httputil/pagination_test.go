package httputil_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/rentaldesk/searchsync/internal/httputil"
)

func paginationContext(query string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/v1/index/reindex"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	valid := map[string][2]int{
		"":                   {0, httputil.DefaultLimit},
		"?offset=40":         {40, httputil.DefaultLimit},
		"?offset=5&limit=1":  {5, 1},
		"?limit=100":         {0, httputil.MaxLimit},
		"?offset=0&limit=50": {0, 50},
	}
	for query, want := range valid {
		t.Run("valid "+query, func(t *testing.T) {
			offset, limit, err := httputil.ParsePagination(paginationContext(query))
			assert.NoError(t, err)
			assert.Equal(t, want[0], offset)
			assert.Equal(t, want[1], limit)
		})
	}

	invalid := map[string]string{
		"?offset=-1":  "invalid offset parameter: must be a non-negative integer",
		"?offset=abc": "invalid offset parameter: must be a non-negative integer",
		"?limit=0":    "invalid limit parameter: must be between 1 and 100",
		"?limit=101":  "invalid limit parameter: must be between 1 and 100",
		"?limit=xyz":  "invalid limit parameter: must be between 1 and 100",
	}
	for query, message := range invalid {
		t.Run("invalid "+query, func(t *testing.T) {
			offset, limit, err := httputil.ParsePagination(paginationContext(query))
			assert.EqualError(t, err, message)
			assert.Zero(t, offset)
			assert.Zero(t, limit)
		})
	}
}
