package http

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
	"github.com/rentaldesk/searchsync/internal/search/http/dto"
	"github.com/rentaldesk/searchsync/internal/search/index"
)

func TestIndexHandler_SyncItemHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase, _ := setupIndexHandler(t)
		mockUseCase.On("SyncUpdate", mock.Anything, int64(15)).Return(searchDomain.SyncDone).Once()

		c, w := createTestContext(http.MethodPut, "/v1/index/items/15", nil)
		c.Params = gin.Params{{Key: "id", Value: "15"}}
		handler.SyncItemHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ItemSyncResponse
		decodeBody(t, w, &response)
		assert.Equal(t, dto.ItemSyncResponse{ItemID: 15, State: "done"}, response)
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		handler, _, _ := setupIndexHandler(t)

		c, w := createTestContext(http.MethodPut, "/v1/index/items/abc", nil)
		c.Params = gin.Params{{Key: "id", Value: "abc"}}
		handler.SyncItemHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestIndexHandler_DeleteItemHandler(t *testing.T) {
	handler, mockUseCase, _ := setupIndexHandler(t)
	mockUseCase.On("SyncDelete", mock.Anything, int64(3)).Return(searchDomain.SyncFailed).Once()

	c, w := createTestContext(http.MethodDelete, "/v1/index/items/3", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	handler.DeleteItemHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response dto.ItemSyncResponse
	decodeBody(t, w, &response)
	assert.Equal(t, "failed", response.State)
}

func TestIndexHandler_InitIndexHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase, _ := setupIndexHandler(t)
		mockUseCase.On("InitIndex", mock.Anything).Return(nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/index", nil)
		handler.InitIndexHandler(c)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Error_Unavailable", func(t *testing.T) {
		handler, mockUseCase, _ := setupIndexHandler(t)
		mockUseCase.On("InitIndex", mock.Anything).Return(searchDomain.ErrIndexUnavailable).Once()

		c, w := createTestContext(http.MethodPost, "/v1/index", nil)
		handler.InitIndexHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestIndexHandler_StatusHandler(t *testing.T) {
	t.Run("Connected", func(t *testing.T) {
		handler, mockUseCase, _ := setupIndexHandler(t)
		mockUseCase.On("TestConnection", mock.Anything).
			Return(index.Status{Backend: index.BackendOpenSearch, Connected: true, LastCheck: time.Now()}).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/index/status", nil)
		handler.StatusHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ConnectionResponse
		decodeBody(t, w, &response)
		assert.True(t, response.Connected)
		assert.Equal(t, index.BackendOpenSearch, response.Backend)
	})

	t.Run("Disconnected", func(t *testing.T) {
		handler, mockUseCase, _ := setupIndexHandler(t)
		mockUseCase.On("TestConnection", mock.Anything).
			Return(index.Status{Backend: index.BackendTypesense, LastError: "connection refused"}).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/index/status", nil)
		handler.StatusHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var response dto.ConnectionResponse
		decodeBody(t, w, &response)
		assert.Equal(t, "connection refused", response.LastError)
	})
}

func TestIndexHandler_StartReindexHandler(t *testing.T) {
	started := searchDomain.ReindexJob{
		ID:        "0195a1b2-0000-7000-8000-000000000001",
		State:     searchDomain.SyncPending,
		Logs:      []string{},
		StartedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}

	t.Run("Success_AllItems", func(t *testing.T) {
		handler, _, jobs := setupIndexHandler(t)
		jobs.On("Start", []int64(nil)).Return(started, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/index/reindex", nil)
		handler.StartReindexHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "/v1/index/reindex/"+started.ID, w.Header().Get("Location"))
		var response dto.ReindexJobResponse
		decodeBody(t, w, &response)
		assert.Equal(t, started.ID, response.ID)
		assert.Equal(t, "pending", response.State)
	})

	t.Run("Success_ExplicitIDs", func(t *testing.T) {
		handler, _, jobs := setupIndexHandler(t)
		jobs.On("Start", []int64{4, 5}).Return(started, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/index/reindex", dto.ReindexRequest{IDs: []int64{4, 5}})
		handler.StartReindexHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("Error_AlreadyRunning", func(t *testing.T) {
		handler, _, jobs := setupIndexHandler(t)
		jobs.On("Start", []int64(nil)).Return(searchDomain.ReindexJob{}, searchDomain.ErrReindexRunning).Once()

		c, w := createTestContext(http.MethodPost, "/v1/index/reindex", nil)
		handler.StartReindexHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Error_InvalidIDs", func(t *testing.T) {
		handler, _, _ := setupIndexHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/index/reindex", dto.ReindexRequest{IDs: []int64{-1}})
		handler.StartReindexHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		handler, _, _ := setupIndexHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/index/reindex", `{"ids": [1,`)
		handler.StartReindexHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIndexHandler_GetReindexHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, _, jobs := setupIndexHandler(t)
		job := searchDomain.ReindexJob{
			ID:       "job-1",
			State:    searchDomain.SyncIndexing,
			Progress: 58,
			Logs:     []string{"built 250 documents, 0 items skipped"},
		}
		jobs.On("Get", "job-1").Return(job, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/index/reindex/job-1", nil)
		c.Params = gin.Params{{Key: "job_id", Value: "job-1"}}
		handler.GetReindexHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ReindexJobResponse
		decodeBody(t, w, &response)
		assert.Equal(t, 58, response.Progress)
		assert.Equal(t, "indexing", response.State)
		assert.Len(t, response.Logs, 1)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, _, jobs := setupIndexHandler(t)
		jobs.On("Get", "missing").Return(searchDomain.ReindexJob{}, searchDomain.ErrJobNotFound).Once()

		c, w := createTestContext(http.MethodGet, "/v1/index/reindex/missing", nil)
		c.Params = gin.Params{{Key: "job_id", Value: "missing"}}
		handler.GetReindexHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestIndexHandler_ListReindexHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, _, jobs := setupIndexHandler(t)
		jobs.On("List", 0, 5).Return([]searchDomain.ReindexJob{{ID: "b"}, {ID: "a"}}).Once()

		c, w := createTestContext(http.MethodGet, "/v1/index/reindex?limit=5", nil)
		handler.ListReindexHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ListReindexJobsResponse
		decodeBody(t, w, &response)
		assert.Len(t, response.Data, 2)
		assert.Equal(t, "b", response.Data[0].ID)
	})

	t.Run("Error_InvalidLimit", func(t *testing.T) {
		handler, _, _ := setupIndexHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/index/reindex?limit=1000", nil)
		handler.ListReindexHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestIndexHandler_SearchHandler(t *testing.T) {
	t.Run("Success_PassThrough", func(t *testing.T) {
		handler, mockUseCase, _ := setupIndexHandler(t)
		query := `{"query":{"match":{"name":"ao dai"}}}`
		mockUseCase.On("Search", mock.Anything, json.RawMessage(query)).
			Return(json.RawMessage(`{"hits":{"total":{"value":1}}}`), nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/search", query)
		handler.SearchHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"hits":{"total":{"value":1}}}`, w.Body.String())
	})

	t.Run("Error_NotAnObject", func(t *testing.T) {
		handler, _, _ := setupIndexHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/search", `["ao dai"]`)
		handler.SearchHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_BackendUnavailable", func(t *testing.T) {
		handler, mockUseCase, _ := setupIndexHandler(t)
		mockUseCase.On("Search", mock.Anything, mock.Anything).Return(nil, searchDomain.ErrIndexUnavailable).Once()

		c, w := createTestContext(http.MethodPost, "/v1/search", `{"q":"dam"}`)
		handler.SearchHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
