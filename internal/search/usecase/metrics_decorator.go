package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rentaldesk/searchsync/internal/metrics"
	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
	"github.com/rentaldesk/searchsync/internal/search/index"
)

const metricsDomain = "search"

// syncUseCaseWithMetrics decorates SyncUseCase with metrics instrumentation.
type syncUseCaseWithMetrics struct {
	next    SyncUseCase
	metrics metrics.BusinessMetrics
}

// NewSyncUseCaseWithMetrics wraps a SyncUseCase with metrics recording.
func NewSyncUseCaseWithMetrics(useCase SyncUseCase, m metrics.BusinessMetrics) SyncUseCase {
	return &syncUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *syncUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	s.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	s.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (s *syncUseCaseWithMetrics) recordDocuments(ctx context.Context, result searchDomain.SyncResult) {
	s.metrics.RecordDocuments(ctx, metricsDomain, metrics.OutcomeIndexed, result.Synced)
	s.metrics.RecordDocuments(ctx, metricsDomain, metrics.OutcomeFailed, result.Failed)
}

// SyncCreate records metrics for create syncs.
func (s *syncUseCaseWithMetrics) SyncCreate(ctx context.Context, itemID int64) searchDomain.SyncState {
	start := time.Now()
	state := s.next.SyncCreate(ctx, itemID)
	s.record(ctx, "sync_create", start, state == searchDomain.SyncDone)
	return state
}

// SyncUpdate records metrics for update syncs.
func (s *syncUseCaseWithMetrics) SyncUpdate(ctx context.Context, itemID int64) searchDomain.SyncState {
	start := time.Now()
	state := s.next.SyncUpdate(ctx, itemID)
	s.record(ctx, "sync_update", start, state == searchDomain.SyncDone)
	return state
}

// SyncDelete records metrics for delete syncs.
func (s *syncUseCaseWithMetrics) SyncDelete(ctx context.Context, itemID int64) searchDomain.SyncState {
	start := time.Now()
	state := s.next.SyncDelete(ctx, itemID)
	s.record(ctx, "sync_delete", start, state == searchDomain.SyncDone)
	return state
}

// SyncMany records metrics for bulk resyncs. A run with any failed document
// counts as an error.
func (s *syncUseCaseWithMetrics) SyncMany(
	ctx context.Context,
	ids []int64,
	observer searchDomain.SyncObserver,
) searchDomain.SyncResult {
	start := time.Now()
	result := s.next.SyncMany(ctx, ids, observer)
	s.record(ctx, "sync_many", start, result.State == searchDomain.SyncDone && result.Failed == 0)
	s.recordDocuments(ctx, result)
	return result
}

// SyncAll records metrics for full resyncs.
func (s *syncUseCaseWithMetrics) SyncAll(
	ctx context.Context,
	observer searchDomain.SyncObserver,
) (searchDomain.SyncResult, error) {
	start := time.Now()
	result, err := s.next.SyncAll(ctx, observer)
	s.record(ctx, "sync_all", start, err == nil && result.State == searchDomain.SyncDone && result.Failed == 0)
	s.recordDocuments(ctx, result)
	return result, err
}

// InitIndex records metrics for index creation.
func (s *syncUseCaseWithMetrics) InitIndex(ctx context.Context) error {
	start := time.Now()
	err := s.next.InitIndex(ctx)
	s.record(ctx, "index_init", start, err == nil)
	return err
}

// RecreateIndex records metrics for index recreation.
func (s *syncUseCaseWithMetrics) RecreateIndex(
	ctx context.Context,
	observer searchDomain.SyncObserver,
) (searchDomain.SyncResult, error) {
	start := time.Now()
	result, err := s.next.RecreateIndex(ctx, observer)
	s.record(ctx, "index_recreate", start, err == nil && result.State == searchDomain.SyncDone)
	s.recordDocuments(ctx, result)
	return result, err
}

// TestConnection records metrics for connectivity checks.
func (s *syncUseCaseWithMetrics) TestConnection(ctx context.Context) index.Status {
	start := time.Now()
	status := s.next.TestConnection(ctx)
	s.record(ctx, "test_connection", start, status.Connected)
	return status
}

// Search records metrics for query pass-through.
func (s *syncUseCaseWithMetrics) Search(ctx context.Context, query json.RawMessage) (json.RawMessage, error) {
	start := time.Now()
	resp, err := s.next.Search(ctx, query)
	s.record(ctx, "search", start, err == nil)
	return resp, err
}
