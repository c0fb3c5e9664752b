package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
	"github.com/rentaldesk/searchsync/internal/search/usecase/mocks"
)

func waitForState(t *testing.T, jobs *ReindexJobs, id string, state searchDomain.SyncState) searchDomain.ReindexJob {
	t.Helper()
	var job searchDomain.ReindexJob
	require.Eventually(t, func() bool {
		var err error
		job, err = jobs.Get(id)
		return err == nil && job.State == state
	}, 2*time.Second, 5*time.Millisecond)
	return job
}

func TestReindexJobs_SyncMany(t *testing.T) {
	next := mocks.NewMockSyncUseCase(t)
	release := make(chan struct{})

	next.On("SyncMany", mock.Anything, []int64{4, 5}, mock.Anything).
		Run(func(args mock.Arguments) {
			observer := args.Get(2).(searchDomain.SyncObserver)
			observer.Progress(30)
			observer.Log("built 2 documents, 0 items skipped")
			<-release
		}).
		Return(searchDomain.SyncResult{Synced: 2, Total: 2, State: searchDomain.SyncDone}).
		Once()

	jobs := NewReindexJobs(next, discardLogger())
	defer jobs.Close()

	job, err := jobs.Start([]int64{4, 5})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, searchDomain.SyncPending, job.State)

	require.Eventually(t, func() bool {
		current, err := jobs.Get(job.ID)
		return err == nil && current.Progress == 30
	}, 2*time.Second, 5*time.Millisecond)

	_, err = jobs.Start(nil)
	assert.ErrorIs(t, err, searchDomain.ErrReindexRunning)

	close(release)
	done := waitForState(t, jobs, job.ID, searchDomain.SyncDone)
	assert.Equal(t, 100, done.Progress)
	require.NotNil(t, done.Result)
	assert.Equal(t, 2, done.Result.Synced)
	require.NotNil(t, done.FinishedAt)
	assert.Equal(t, []string{"built 2 documents, 0 items skipped"}, done.Logs)

	// Another job may start once the first is finished.
	next.On("SyncAll", mock.Anything, mock.Anything).
		Return(searchDomain.SyncResult{State: searchDomain.SyncDone}, nil).
		Once()
	second, err := jobs.Start(nil)
	require.NoError(t, err)
	assert.NotEqual(t, job.ID, second.ID)
	waitForState(t, jobs, second.ID, searchDomain.SyncDone)
}

func TestReindexJobs_SyncAllFailure(t *testing.T) {
	next := mocks.NewMockSyncUseCase(t)
	next.On("SyncAll", mock.Anything, mock.Anything).
		Return(searchDomain.SyncResult{State: searchDomain.SyncFailed}, errBoom).
		Once()

	jobs := NewReindexJobs(next, discardLogger())
	defer jobs.Close()

	job, err := jobs.Start(nil)
	require.NoError(t, err)

	failed := waitForState(t, jobs, job.ID, searchDomain.SyncFailed)
	assert.Contains(t, failed.Logs, "boom")
}

func TestReindexJobs_LogTailIsBounded(t *testing.T) {
	next := mocks.NewMockSyncUseCase(t)
	next.On("SyncMany", mock.Anything, []int64{1}, mock.Anything).
		Run(func(args mock.Arguments) {
			observer := args.Get(2).(searchDomain.SyncObserver)
			for i := 0; i < maxJobLogLines+50; i++ {
				observer.Log("line")
			}
			observer.Log("last")
		}).
		Return(searchDomain.SyncResult{Synced: 1, Total: 1, State: searchDomain.SyncDone}).
		Once()

	jobs := NewReindexJobs(next, discardLogger())
	defer jobs.Close()

	job, err := jobs.Start([]int64{1})
	require.NoError(t, err)

	done := waitForState(t, jobs, job.ID, searchDomain.SyncDone)
	assert.Len(t, done.Logs, maxJobLogLines)
	assert.Equal(t, "last", done.Logs[len(done.Logs)-1])
}

func TestReindexJobs_GetUnknown(t *testing.T) {
	jobs := NewReindexJobs(mocks.NewMockSyncUseCase(t), discardLogger())
	defer jobs.Close()

	_, err := jobs.Get("missing")
	assert.ErrorIs(t, err, searchDomain.ErrJobNotFound)
}

func TestReindexJobs_CloseCancelsRunningJob(t *testing.T) {
	next := mocks.NewMockSyncUseCase(t)
	started := make(chan struct{})

	next.On("SyncMany", mock.Anything, []int64{1}, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			close(started)
			<-ctx.Done()
		}).
		Return(searchDomain.SyncResult{Total: 1, Failed: 1, State: searchDomain.SyncFailed}).
		Once()

	jobs := NewReindexJobs(next, discardLogger())
	job, err := jobs.Start([]int64{1})
	require.NoError(t, err)

	<-started
	jobs.Close()

	current, err := jobs.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, searchDomain.SyncFailed, current.State)
}

func TestReindexJobs_List(t *testing.T) {
	next := mocks.NewMockSyncUseCase(t)
	next.On("SyncMany", mock.Anything, mock.Anything, mock.Anything).
		Return(searchDomain.SyncResult{Synced: 1, Total: 1, State: searchDomain.SyncDone}).
		Times(3)

	jobs := NewReindexJobs(next, discardLogger())
	defer jobs.Close()

	var started []string
	for id := int64(1); id <= 3; id++ {
		job, err := jobs.Start([]int64{id})
		require.NoError(t, err)
		waitForState(t, jobs, job.ID, searchDomain.SyncDone)
		started = append(started, job.ID)
	}

	listed := jobs.List(0, 2)
	require.Len(t, listed, 2)
	assert.Equal(t, started[2], listed[0].ID)
	assert.Equal(t, started[1], listed[1].ID)

	assert.Len(t, jobs.List(2, 10), 1)
	assert.Empty(t, jobs.List(5, 10))
}
