package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
	"github.com/rentaldesk/searchsync/internal/search/index"
)

func TestMapReindexJobToResponse(t *testing.T) {
	started := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	finished := started.Add(time.Minute)

	t.Run("finished job", func(t *testing.T) {
		job := searchDomain.ReindexJob{
			ID:       "0195a1b2-0000-7000-8000-000000000001",
			State:    searchDomain.SyncDone,
			Progress: 100,
			Result: &searchDomain.SyncResult{
				Synced: 9, Failed: 1, Total: 10, State: searchDomain.SyncDone, FailedIDs: []int64{4},
			},
			Logs:       []string{"sync finished"},
			StartedAt:  started,
			FinishedAt: &finished,
		}

		response := MapReindexJobToResponse(job)

		assert.Equal(t, "done", response.State)
		require.NotNil(t, response.Result)
		assert.Equal(t, []int64{4}, response.Result.FailedIDs)
		assert.Equal(t, &finished, response.FinishedAt)

		body, err := json.Marshal(response)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"failed_ids":[4]`)
		assert.Contains(t, string(body), `"started_at":"2026-03-01T08:00:00Z"`)
	})

	t.Run("running job has empty collections", func(t *testing.T) {
		response := MapReindexJobToResponse(searchDomain.ReindexJob{ID: "x", State: searchDomain.SyncBuilding})

		assert.Nil(t, response.Result)
		assert.Equal(t, []string{}, response.Logs)

		body, err := json.Marshal(response)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "finished_at")
		assert.Contains(t, string(body), `"logs":[]`)
	})
}

func TestMapSyncResultToResponse(t *testing.T) {
	response := MapSyncResultToResponse(searchDomain.SyncResult{Synced: 3, Total: 3, State: searchDomain.SyncDone})
	assert.Equal(t, SyncResultResponse{Synced: 3, Total: 3, State: "done", FailedIDs: []int64{}}, response)
}

func TestMapReindexJobsToListResponse(t *testing.T) {
	response := MapReindexJobsToListResponse(nil)
	assert.Equal(t, []ReindexJobResponse{}, response.Data)

	response = MapReindexJobsToListResponse([]searchDomain.ReindexJob{{ID: "a"}, {ID: "b"}})
	require.Len(t, response.Data, 2)
	assert.Equal(t, "b", response.Data[1].ID)
}

func TestMapStatusToResponse(t *testing.T) {
	t.Run("never checked", func(t *testing.T) {
		response := MapStatusToResponse(index.Status{Backend: index.BackendOpenSearch})
		assert.Nil(t, response.LastCheck)
		assert.False(t, response.Connected)
	})

	t.Run("check failed", func(t *testing.T) {
		check := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
		response := MapStatusToResponse(index.Status{
			Backend:   index.BackendTypesense,
			LastCheck: check,
			LastError: "connection refused",
		})
		require.NotNil(t, response.LastCheck)
		assert.Equal(t, check, *response.LastCheck)
		assert.Equal(t, "connection refused", response.LastError)
	})
}
