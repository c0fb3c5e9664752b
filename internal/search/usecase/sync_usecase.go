package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	apperrors "github.com/rentaldesk/searchsync/internal/errors"
	recordsDomain "github.com/rentaldesk/searchsync/internal/records/domain"
	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
	"github.com/rentaldesk/searchsync/internal/search/index"
	searchService "github.com/rentaldesk/searchsync/internal/search/service"
)

// Progress split between the build and index phases of a bulk resync.
const (
	buildPhaseWeight = 30
	indexPhaseWeight = 70
)

// Options tunes the synchronization behavior.
type Options struct {
	// IndexName is the index or collection documents are written to.
	IndexName string
	// FetchBatchSize bounds the ids per primary-store query.
	FetchBatchSize int
	// UploadChunkSize bounds the documents per bulk upsert.
	UploadChunkSize int
	// MaxAttempts bounds the failed bulk upserts of one resync on transient
	// errors, counted across all chunks.
	MaxAttempts int
	// RetryBaseDelay is doubled per attempt: attempt n waits RetryBaseDelay * 2^n.
	RetryBaseDelay time.Duration
	// DocumentTimeout caps single item syncs.
	DocumentTimeout time.Duration
	// BulkTimeout caps each bulk upsert attempt.
	BulkTimeout time.Duration
	// ChunkRatePerSec paces bulk upserts. Zero disables pacing.
	ChunkRatePerSec float64
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		IndexName:       "inventory",
		FetchBatchSize:  500,
		UploadChunkSize: 100,
		MaxAttempts:     3,
		RetryBaseDelay:  time.Second,
		DocumentTimeout: 5 * time.Second,
		BulkTimeout:     120 * time.Second,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.IndexName == "" {
		o.IndexName = d.IndexName
	}
	if o.FetchBatchSize <= 0 {
		o.FetchBatchSize = d.FetchBatchSize
	}
	if o.UploadChunkSize <= 0 {
		o.UploadChunkSize = d.UploadChunkSize
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = d.MaxAttempts
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = d.RetryBaseDelay
	}
	if o.DocumentTimeout <= 0 {
		o.DocumentTimeout = d.DocumentTimeout
	}
	if o.BulkTimeout <= 0 {
		o.BulkTimeout = d.BulkTimeout
	}
	return o
}

type syncUseCase struct {
	conn    *index.Connection
	repo    InventoryRepository
	builder DocumentBuilder
	logger  *slog.Logger
	opts    Options
	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewSyncUseCase creates a SyncUseCase writing through conn.
func NewSyncUseCase(
	conn *index.Connection,
	repo InventoryRepository,
	builder DocumentBuilder,
	logger *slog.Logger,
	opts Options,
) SyncUseCase {
	return newSyncUseCase(conn, repo, builder, logger, opts)
}

func newSyncUseCase(
	conn *index.Connection,
	repo InventoryRepository,
	builder DocumentBuilder,
	logger *slog.Logger,
	opts Options,
) *syncUseCase {
	opts = opts.withDefaults()

	var limiter *rate.Limiter
	if opts.ChunkRatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.ChunkRatePerSec), 1)
	}

	return &syncUseCase{
		conn:    conn,
		repo:    repo,
		builder: builder,
		logger:  logger,
		opts:    opts,
		limiter: limiter,
		sleep:   sleepContext,
	}
}

// SyncCreate indexes a newly created item.
func (s *syncUseCase) SyncCreate(ctx context.Context, itemID int64) searchDomain.SyncState {
	return s.syncOne(ctx, "create", itemID)
}

// SyncUpdate re-indexes an updated item.
func (s *syncUseCase) SyncUpdate(ctx context.Context, itemID int64) searchDomain.SyncState {
	return s.syncOne(ctx, "update", itemID)
}

// SyncDelete removes an item from the index.
func (s *syncUseCase) SyncDelete(ctx context.Context, itemID int64) searchDomain.SyncState {
	ctx, cancel := context.WithTimeout(ctx, s.opts.DocumentTimeout)
	defer cancel()

	logger := s.logger.With(slog.String("operation", "delete"), slog.Int64("item_id", itemID))

	if !s.conn.Ensure(ctx) {
		logger.Warn("search backend unavailable, skipping sync")
		return searchDomain.SyncFailed
	}

	if err := s.deleteDocument(ctx, itemID); err != nil {
		logger.Error("failed to delete search document", slog.Any("error", err))
		return searchDomain.SyncFailed
	}

	logger.Debug("search document deleted")
	return searchDomain.SyncDone
}

func (s *syncUseCase) syncOne(ctx context.Context, operation string, itemID int64) searchDomain.SyncState {
	ctx, cancel := context.WithTimeout(ctx, s.opts.DocumentTimeout)
	defer cancel()

	logger := s.logger.With(slog.String("operation", operation), slog.Int64("item_id", itemID))

	if !s.conn.Ensure(ctx) {
		logger.Warn("search backend unavailable, skipping sync")
		return searchDomain.SyncFailed
	}

	batch, err := s.fetchBatch(ctx, []int64{itemID})
	if err != nil {
		logger.Error("failed to load item for sync", slog.Any("error", err))
		return searchDomain.SyncFailed
	}

	doc, err := s.builder.Build(batch.input(itemID))
	switch {
	case apperrors.Is(err, searchDomain.ErrItemNotFound):
		// The row is gone; make the projection match.
		if err := s.deleteDocument(ctx, itemID); err != nil {
			logger.Error("failed to delete search document of missing item", slog.Any("error", err))
			return searchDomain.SyncFailed
		}
		logger.Info("item no longer exists, search document removed")
		return searchDomain.SyncDone
	case err != nil:
		logger.Error("failed to build search document", slog.Any("error", err))
		return searchDomain.SyncFailed
	}

	if err := s.conn.Client().Upsert(ctx, s.opts.IndexName, doc); err != nil {
		s.markIfTransient(err)
		logger.Error("failed to upsert search document", slog.Any("error", err))
		return searchDomain.SyncFailed
	}

	logger.Debug("search document upserted")
	return searchDomain.SyncDone
}

func (s *syncUseCase) deleteDocument(ctx context.Context, itemID int64) error {
	err := s.conn.Client().Delete(ctx, s.opts.IndexName, searchDomain.DocumentID(itemID))
	s.markIfTransient(err)
	return err
}

// SyncMany rebuilds the documents of ids.
func (s *syncUseCase) SyncMany(
	ctx context.Context,
	ids []int64,
	observer searchDomain.SyncObserver,
) searchDomain.SyncResult {
	ids = uniqueIDs(ids)
	result := searchDomain.SyncResult{Total: len(ids), State: searchDomain.SyncPending}
	progress := newProgressReporter(observer)

	if len(ids) == 0 {
		result.State = searchDomain.SyncDone
		progress.report(100)
		return result
	}

	logf := func(level slog.Level, format string, args ...any) {
		message := fmt.Sprintf(format, args...)
		s.logger.Log(ctx, level, message, slog.String("operation", "sync_many"))
		observer.Log(message)
	}

	if !s.conn.Ensure(ctx) {
		logf(slog.LevelError, "search backend unavailable, %d items not synced", len(ids))
		result.Failed = len(ids)
		result.FailedIDs = ids
		result.State = searchDomain.SyncFailed
		return result
	}

	// Fetch phase.
	result.State = searchDomain.SyncBuilding
	fetched := newFetchedRows()
	for start := 0; start < len(ids); start += s.opts.FetchBatchSize {
		end := min(start+s.opts.FetchBatchSize, len(ids))
		batch, err := s.fetchBatch(ctx, ids[start:end])
		if err != nil {
			logf(slog.LevelError, "failed to fetch items %d to %d: %v", start+1, end, err)
			continue
		}
		fetched.merge(batch)
	}

	// Build phase.
	docs := make([]*searchDomain.SearchDocument, 0, len(ids))
	for i, id := range ids {
		doc, err := s.builder.Build(fetched.input(id))
		if err != nil {
			result.FailedIDs = append(result.FailedIDs, id)
			logf(slog.LevelWarn, "skipping item %d: %v", id, err)
		} else {
			docs = append(docs, doc)
		}
		progress.report(buildPhaseWeight * (i + 1) / len(ids))
	}
	result.Failed = len(result.FailedIDs)
	logf(slog.LevelInfo, "built %d documents, %d items skipped", len(docs), result.Failed)

	// Index phase.
	result.State = searchDomain.SyncIndexing
	budget := &retryBudget{max: s.opts.MaxAttempts}
	for start := 0; start < len(docs); start += s.opts.UploadChunkSize {
		end := min(start+s.opts.UploadChunkSize, len(docs))
		chunk := docs[start:end]

		bulk, err := s.indexChunk(ctx, chunk, budget, logf)
		if errors.Is(err, errIndexAborted) {
			remaining := docs[start:]
			logf(slog.LevelError, "%d documents not indexed: %v", len(remaining), err)
			result.Failed += len(remaining)
			result.FailedIDs = append(result.FailedIDs, documentIDs(remaining)...)
			break
		}
		if err != nil {
			logf(slog.LevelError, "chunk of %d documents failed: %v", len(chunk), err)
			result.Failed += len(chunk)
			result.FailedIDs = append(result.FailedIDs, documentIDs(chunk)...)
		} else {
			rejected := bulk.FailedItems()
			for _, item := range rejected {
				logf(slog.LevelWarn, "document %s rejected: %s", item.ID, item.Error)
				if id, err := searchDomain.ParseDocumentID(item.ID); err == nil {
					result.FailedIDs = append(result.FailedIDs, id)
				}
			}
			result.Synced += bulk.Succeeded()
			result.Failed += len(rejected)
		}

		progress.report(buildPhaseWeight + indexPhaseWeight*end/len(docs))
	}
	progress.report(100)

	result.State = searchDomain.SyncDone
	if result.Synced == 0 && result.Failed > 0 {
		result.State = searchDomain.SyncFailed
	}
	logf(slog.LevelInfo, "sync finished: %d synced, %d failed, %d total", result.Synced, result.Failed, result.Total)
	return result
}

// errIndexAborted ends the index phase: the retry budget is spent or ctx is done.
var errIndexAborted = errors.New("index phase aborted")

// retryBudget counts the transient bulk upsert failures of one resync. All
// chunks draw from the same budget.
type retryBudget struct {
	failures int
	max      int
}

// indexChunk uploads one chunk, retrying transient errors while the budget
// lasts and waiting RetryBaseDelay * 2^n after the nth failure.
func (s *syncUseCase) indexChunk(
	ctx context.Context,
	chunk []*searchDomain.SearchDocument,
	budget *retryBudget,
	logf func(level slog.Level, format string, args ...any),
) (searchDomain.BulkResult, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return searchDomain.BulkResult{}, fmt.Errorf("%w: %w", errIndexAborted, err)
		}
	}

	for {
		bulk, err := s.bulkUpsert(ctx, chunk)
		if err == nil {
			return bulk, nil
		}
		if !index.IsTransient(err) {
			return searchDomain.BulkResult{}, err
		}

		budget.failures++
		if budget.failures >= budget.max {
			s.conn.MarkUnavailable(err)
			return searchDomain.BulkResult{}, fmt.Errorf("%w after %d failed attempts: %w", errIndexAborted, budget.failures, err)
		}

		delay := s.opts.RetryBaseDelay << budget.failures
		logf(slog.LevelWarn, "bulk upsert attempt %d/%d failed, retrying in %s: %v",
			budget.failures, budget.max, delay, err)
		if err := s.sleep(ctx, delay); err != nil {
			return searchDomain.BulkResult{}, fmt.Errorf("%w: %w", errIndexAborted, err)
		}
	}
}

func (s *syncUseCase) bulkUpsert(
	ctx context.Context,
	chunk []*searchDomain.SearchDocument,
) (searchDomain.BulkResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.BulkTimeout)
	defer cancel()
	return s.conn.Client().BulkUpsert(ctx, s.opts.IndexName, chunk)
}

// SyncAll resyncs every item in the primary store.
func (s *syncUseCase) SyncAll(
	ctx context.Context,
	observer searchDomain.SyncObserver,
) (searchDomain.SyncResult, error) {
	ids, err := s.repo.ListItemIDs(ctx)
	if err != nil {
		return searchDomain.SyncResult{State: searchDomain.SyncFailed}, apperrors.Wrap(err, "failed to list item ids")
	}
	return s.SyncMany(ctx, ids, observer), nil
}

// InitIndex creates the index when it does not exist.
func (s *syncUseCase) InitIndex(ctx context.Context) error {
	if !s.conn.Ensure(ctx) {
		return searchDomain.ErrIndexUnavailable
	}
	if err := s.conn.Client().EnsureSchema(ctx, s.opts.IndexName); err != nil {
		s.markIfTransient(err)
		return apperrors.Wrap(err, "failed to ensure index")
	}
	return nil
}

// RecreateIndex drops and recreates the index, then resyncs every item.
func (s *syncUseCase) RecreateIndex(
	ctx context.Context,
	observer searchDomain.SyncObserver,
) (searchDomain.SyncResult, error) {
	failed := searchDomain.SyncResult{State: searchDomain.SyncFailed}

	if !s.conn.Ensure(ctx) {
		return failed, searchDomain.ErrIndexUnavailable
	}
	if err := s.conn.Client().DeleteSchema(ctx, s.opts.IndexName); err != nil {
		s.markIfTransient(err)
		return failed, apperrors.Wrap(err, "failed to delete index")
	}
	observer.Log(fmt.Sprintf("index %s deleted", s.opts.IndexName))

	if err := s.InitIndex(ctx); err != nil {
		return failed, err
	}
	observer.Log(fmt.Sprintf("index %s created", s.opts.IndexName))

	return s.SyncAll(ctx, observer)
}

// TestConnection checks the backend now.
func (s *syncUseCase) TestConnection(ctx context.Context) index.Status {
	s.conn.Connect(ctx)
	return s.conn.Status()
}

// Search runs query against the index.
func (s *syncUseCase) Search(ctx context.Context, query json.RawMessage) (json.RawMessage, error) {
	if !s.conn.Ensure(ctx) {
		return nil, searchDomain.ErrIndexUnavailable
	}
	resp, err := s.conn.Client().Search(ctx, s.opts.IndexName, query)
	if err != nil {
		s.markIfTransient(err)
		return nil, err
	}
	return resp, nil
}

func (s *syncUseCase) markIfTransient(err error) {
	if index.IsTransient(err) {
		s.conn.MarkUnavailable(err)
	}
}

// fetchBatch loads the item, size and tag rows of ids concurrently.
func (s *syncUseCase) fetchBatch(ctx context.Context, ids []int64) (*fetchedRows, error) {
	var (
		items []*recordsDomain.InventoryItem
		sizes []recordsDomain.InventorySizeRow
		tags  []recordsDomain.ItemTag
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.ListItemsByIDs(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		sizes, err = s.repo.ListSizesByItemIDs(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		tags, err = s.repo.ListTagsByItemIDs(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := newFetchedRows()
	for _, item := range items {
		rows.items[item.ID] = item
	}
	for _, size := range sizes {
		rows.sizes[size.ItemID] = append(rows.sizes[size.ItemID], size)
	}
	for _, tag := range tags {
		rows.tags[tag.ItemID] = append(rows.tags[tag.ItemID], tag)
	}
	return rows, nil
}

// fetchedRows indexes fetched rows by item id.
type fetchedRows struct {
	items map[int64]*recordsDomain.InventoryItem
	sizes map[int64][]recordsDomain.InventorySizeRow
	tags  map[int64][]recordsDomain.ItemTag
}

func newFetchedRows() *fetchedRows {
	return &fetchedRows{
		items: make(map[int64]*recordsDomain.InventoryItem),
		sizes: make(map[int64][]recordsDomain.InventorySizeRow),
		tags:  make(map[int64][]recordsDomain.ItemTag),
	}
}

func (f *fetchedRows) merge(other *fetchedRows) {
	for id, item := range other.items {
		f.items[id] = item
	}
	for id, sizes := range other.sizes {
		f.sizes[id] = append(f.sizes[id], sizes...)
	}
	for id, tags := range other.tags {
		f.tags[id] = append(f.tags[id], tags...)
	}
}

func (f *fetchedRows) input(id int64) searchService.BuildInput {
	return searchService.BuildInput{Item: f.items[id], Sizes: f.sizes[id], Tags: f.tags[id]}
}

// progressReporter forwards progress to the observer, dropping repeats so the
// reported sequence is strictly increasing.
type progressReporter struct {
	observer searchDomain.SyncObserver
	last     int
}

func newProgressReporter(observer searchDomain.SyncObserver) *progressReporter {
	return &progressReporter{observer: observer, last: -1}
}

func (p *progressReporter) report(percent int) {
	percent = max(0, min(percent, 100))
	if percent <= p.last {
		return
	}
	p.last = percent
	p.observer.Progress(percent)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

func documentIDs(docs []*searchDomain.SearchDocument) []int64 {
	ids := make([]int64, 0, len(docs))
	for _, doc := range docs {
		if id, err := searchDomain.ParseDocumentID(doc.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
