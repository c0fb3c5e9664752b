package domain

import (
	"time"
)

// SyncState is the lifecycle of one sync unit (a single item or a bulk resync).
type SyncState string

// Sync states, in the order a successful sync visits them.
const (
	SyncPending  SyncState = "pending"
	SyncBuilding SyncState = "building"
	SyncIndexing SyncState = "indexing"
	SyncDone     SyncState = "done"
	SyncFailed   SyncState = "failed"
)

// Terminal reports whether no further transition is possible.
func (s SyncState) Terminal() bool {
	return s == SyncDone || s == SyncFailed
}

// SyncResult summarizes a bulk resync. Synced + Failed equals Total when the run
// reached the index phase; ids that were never fetched count as failed.
type SyncResult struct {
	Synced    int       `json:"synced"`
	Failed    int       `json:"failed"`
	Total     int       `json:"total"`
	State     SyncState `json:"state"`
	FailedIDs []int64   `json:"failedIds,omitempty"`
}

// ItemResult is the outcome of one document inside a bulk upsert.
type ItemResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkResult is the per-document outcome of one bulk upsert call.
type BulkResult struct {
	Items []ItemResult
}

// Succeeded counts documents the backend accepted.
func (r BulkResult) Succeeded() int {
	n := 0
	for _, item := range r.Items {
		if item.OK {
			n++
		}
	}
	return n
}

// FailedItems returns the documents the backend rejected.
func (r BulkResult) FailedItems() []ItemResult {
	var failed []ItemResult
	for _, item := range r.Items {
		if !item.OK {
			failed = append(failed, item)
		}
	}
	return failed
}

// SyncObserver receives progress (0 to 100, non-decreasing) and log lines from a
// bulk resync. Either callback may be nil.
type SyncObserver struct {
	OnProgress func(percent int)
	OnLog      func(message string)
}

// Progress calls OnProgress when set.
func (o SyncObserver) Progress(percent int) {
	if o.OnProgress != nil {
		o.OnProgress(percent)
	}
}

// Log calls OnLog when set.
func (o SyncObserver) Log(message string) {
	if o.OnLog != nil {
		o.OnLog(message)
	}
}

// ReindexJob tracks a bulk resync started through the admin API.
type ReindexJob struct {
	ID         string      `json:"id"`
	State      SyncState   `json:"state"`
	Progress   int         `json:"progress"`
	Result     *SyncResult `json:"result,omitempty"`
	Logs       []string    `json:"logs"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
}
