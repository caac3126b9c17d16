package cron

import (
	"context"
	"testing"
	"time"

	"github.com/rwa-lab/backend/internal/domain"
	"github.com/rwa-lab/backend/internal/entity"
	"github.com/rwa-lab/backend/internal/repository"
	"github.com/rwa-lab/backend/pkg/testutil"
	"github.com/rwa-lab/backend/pkg/xlock"
	"github.com/stretchr/testify/require"
)

func Test_AssetActivationCronJob(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)

	assetRepo := repository.NewAssetRepository()
	job := NewAssetActivationCronJob(domain.NewAssetSupply(assetRepo, xlock.New()), 0)
	require.True(t, job.RunNow())
	require.WithinDuration(t, time.Now().Add(time.Minute), job.Next(), time.Second)

	job.Do(ctx)

	due, err := assetRepo.GetByID(ctx, testutil.DueAsset.ID)
	require.NoError(t, err)
	require.Equal(t, entity.AssetActive, due.Status)

	approved, err := assetRepo.GetByID(ctx, testutil.ApprovedAsset.ID)
	require.NoError(t, err)
	require.Equal(t, entity.AssetApproved, approved.Status)
}

type countJob struct {
	done chan struct{}
}

func (j *countJob) Do(context.Context) { j.done <- struct{}{} }
func (j *countJob) RunNow() bool       { return true }
func (j *countJob) Next() time.Time    { return time.Now().Add(time.Hour) }

func Test_CronJobManager(t *testing.T) {
	ctx := testutil.NewMockContext()
	job := &countJob{done: make(chan struct{}, 1)}

	manager := NewCronJobManager()
	manager.Register(job)

	stopped := make(chan struct{})
	go func() {
		manager.Start(ctx)
		close(stopped)
	}()

	select {
	case <-job.done:
	case <-time.After(time.Second):
		require.FailNow(t, "job did not run")
	}

	// Wait for the next run to be scheduled before cancelling.
	require.Eventually(t, func() bool {
		manager.mutex.Lock()
		defer manager.mutex.Unlock()
		return manager.jobs[job] != nil
	}, time.Second, 10*time.Millisecond)

	manager.Cancel(ctx)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		require.FailNow(t, "manager did not stop")
	}
}
