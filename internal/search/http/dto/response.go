package dto

import (
	"time"

	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
	"github.com/rentaldesk/searchsync/internal/search/index"
)

// ItemSyncResponse reports the outcome of a single item sync.
type ItemSyncResponse struct {
	ItemID int64  `json:"item_id"`
	State  string `json:"state"`
}

// EventResponse acknowledges an accepted event.
type EventResponse struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	ItemID  int64  `json:"item_id"`
	State   string `json:"state"`
}

// SyncResultResponse summarizes a bulk resync.
type SyncResultResponse struct {
	Synced    int     `json:"synced"`
	Failed    int     `json:"failed"`
	Total     int     `json:"total"`
	State     string  `json:"state"`
	FailedIDs []int64 `json:"failed_ids"`
}

// ReindexJobResponse represents a background resync.
type ReindexJobResponse struct {
	ID         string              `json:"id"`
	State      string              `json:"state"`
	Progress   int                 `json:"progress"`
	Result     *SyncResultResponse `json:"result,omitempty"`
	Logs       []string            `json:"logs"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
}

// ListReindexJobsResponse represents a page of resync jobs.
type ListReindexJobsResponse struct {
	Data []ReindexJobResponse `json:"data"`
}

// ConnectionResponse reports search backend connectivity.
type ConnectionResponse struct {
	Backend   string     `json:"backend"`
	Connected bool       `json:"connected"`
	LastCheck *time.Time `json:"last_check,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// MapSyncResultToResponse converts a domain result to its response.
func MapSyncResultToResponse(result searchDomain.SyncResult) SyncResultResponse {
	failedIDs := result.FailedIDs
	if failedIDs == nil {
		failedIDs = []int64{}
	}
	return SyncResultResponse{
		Synced:    result.Synced,
		Failed:    result.Failed,
		Total:     result.Total,
		State:     string(result.State),
		FailedIDs: failedIDs,
	}
}

// MapReindexJobToResponse converts a job snapshot to its response.
func MapReindexJobToResponse(job searchDomain.ReindexJob) ReindexJobResponse {
	response := ReindexJobResponse{
		ID:         job.ID,
		State:      string(job.State),
		Progress:   job.Progress,
		Logs:       job.Logs,
		StartedAt:  job.StartedAt,
		FinishedAt: job.FinishedAt,
	}
	if response.Logs == nil {
		response.Logs = []string{}
	}
	if job.Result != nil {
		result := MapSyncResultToResponse(*job.Result)
		response.Result = &result
	}
	return response
}

// MapReindexJobsToListResponse converts job snapshots to a list response.
func MapReindexJobsToListResponse(jobs []searchDomain.ReindexJob) ListReindexJobsResponse {
	data := make([]ReindexJobResponse, 0, len(jobs))
	for _, job := range jobs {
		data = append(data, MapReindexJobToResponse(job))
	}
	return ListReindexJobsResponse{Data: data}
}

// MapStatusToResponse converts a connection status to its response.
func MapStatusToResponse(status index.Status) ConnectionResponse {
	response := ConnectionResponse{
		Backend:   status.Backend,
		Connected: status.Connected,
		LastError: status.LastError,
	}
	if !status.LastCheck.IsZero() {
		lastCheck := status.LastCheck
		response.LastCheck = &lastCheck
	}
	return response
}
