package usecase

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
)

// maxJobLogLines bounds the log tail kept per job.
const maxJobLogLines = 200

// ReindexJobs runs bulk resyncs in the background, one at a time, and keeps their
// progress for polling. Safe for concurrent use.
type ReindexJobs struct {
	sync   SyncUseCase
	logger *slog.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	jobs    map[string]*searchDomain.ReindexJob
	running string
}

// NewReindexJobs creates a job registry. Jobs run until they finish or Close is called.
func NewReindexJobs(useCase SyncUseCase, logger *slog.Logger) *ReindexJobs {
	ctx, cancel := context.WithCancel(context.Background())
	return &ReindexJobs{
		sync:   useCase,
		logger: logger,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(map[string]*searchDomain.ReindexJob),
	}
}

// Start launches a resync of ids, or of every item when ids is empty. It returns
// searchDomain.ErrReindexRunning while another job is in progress.
func (r *ReindexJobs) Start(ids []int64) (searchDomain.ReindexJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running != "" {
		return searchDomain.ReindexJob{}, searchDomain.ErrReindexRunning
	}

	job := &searchDomain.ReindexJob{
		ID:        uuid.Must(uuid.NewV7()).String(),
		State:     searchDomain.SyncPending,
		Logs:      []string{},
		StartedAt: r.now().UTC(),
	}
	r.jobs[job.ID] = job
	r.running = job.ID

	ids = slices.Clone(ids)
	r.wg.Add(1)
	go r.run(job.ID, ids)

	return copyJob(job), nil
}

// Get returns a snapshot of a job.
func (r *ReindexJobs) Get(id string) (searchDomain.ReindexJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return searchDomain.ReindexJob{}, searchDomain.ErrJobNotFound
	}
	return copyJob(job), nil
}

// List returns job snapshots, newest first. Job ids are UUIDv7, so their string
// order is their start order.
func (r *ReindexJobs) List(offset, limit int) []searchDomain.ReindexJob {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.jobs))
	for id := range r.jobs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	slices.Reverse(ids)

	if offset >= len(ids) {
		return []searchDomain.ReindexJob{}
	}
	ids = ids[offset:min(offset+limit, len(ids))]

	jobs := make([]searchDomain.ReindexJob, 0, len(ids))
	for _, id := range ids {
		jobs = append(jobs, copyJob(r.jobs[id]))
	}
	return jobs
}

// Close cancels running jobs and waits for them to stop.
func (r *ReindexJobs) Close() {
	r.cancel()
	r.wg.Wait()
}

func (r *ReindexJobs) run(jobID string, ids []int64) {
	defer r.wg.Done()

	observer := searchDomain.SyncObserver{
		OnProgress: func(percent int) {
			r.update(jobID, func(job *searchDomain.ReindexJob) {
				job.Progress = percent
				if percent > 0 && job.State == searchDomain.SyncPending {
					job.State = searchDomain.SyncBuilding
				}
			})
		},
		OnLog: func(message string) {
			r.update(jobID, func(job *searchDomain.ReindexJob) {
				job.Logs = append(job.Logs, message)
				if len(job.Logs) > maxJobLogLines {
					job.Logs = job.Logs[len(job.Logs)-maxJobLogLines:]
				}
			})
		},
	}

	r.update(jobID, func(job *searchDomain.ReindexJob) { job.State = searchDomain.SyncBuilding })

	var (
		result searchDomain.SyncResult
		err    error
	)
	if len(ids) == 0 {
		result, err = r.sync.SyncAll(r.ctx, observer)
	} else {
		result = r.sync.SyncMany(r.ctx, ids, observer)
	}

	if err != nil {
		r.logger.Error("reindex job failed", slog.String("job_id", jobID), slog.Any("error", err))
		observer.Log(err.Error())
		result.State = searchDomain.SyncFailed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	job := r.jobs[jobID]
	finished := r.now().UTC()
	job.State = result.State
	job.Result = &result
	job.FinishedAt = &finished
	if result.State == searchDomain.SyncDone {
		job.Progress = 100
	}
	r.running = ""

	r.logger.Info("reindex job finished",
		slog.String("job_id", jobID),
		slog.String("state", string(result.State)),
		slog.Int("synced", result.Synced),
		slog.Int("failed", result.Failed),
		slog.Int("total", result.Total),
	)
}

func (r *ReindexJobs) update(jobID string, fn func(job *searchDomain.ReindexJob)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		fn(job)
	}
}

func copyJob(job *searchDomain.ReindexJob) searchDomain.ReindexJob {
	c := *job
	c.Logs = slices.Clone(job.Logs)
	if job.Result != nil {
		result := *job.Result
		result.FailedIDs = slices.Clone(job.Result.FailedIDs)
		c.Result = &result
	}
	return c
}
