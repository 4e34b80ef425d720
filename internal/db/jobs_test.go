package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/10thony/CobecDev-sub005/internal/models"
)

func newTestJob(t *testing.T, kind models.JobKind) *models.Job {
	t.Helper()
	job := &models.Job{
		ID:     surrealmodels.NewRecordID("job", uuid.New().String()[:8]),
		Kind:   kind,
		Status: models.JobPending,
		Params: map[string]any{"criteria": []any{"test criterion"}},
	}
	require.NoError(t, testDB.CreateJob(context.Background(), job))
	return job
}

func TestJobCreateAndGet(t *testing.T) {
	ctx := context.Background()
	job := newTestJob(t, models.KindHunt)
	id := models.MustRecordIDString(job.ID)

	assert.Equal(t, models.JobPending, job.Status)
	assert.False(t, job.CreatedAt.IsZero())
	assert.Zero(t, job.ProcessedUnits)
	assert.Zero(t, job.Checkpoint)

	got, err := testDB.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.KindHunt, got.Kind)
	assert.Equal(t, models.JobPending, got.Status)
	require.NotNil(t, got.Params)
	assert.Nil(t, got.StartedAt)

	_, err = testDB.GetJob(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobTransitions(t *testing.T) {
	ctx := context.Background()
	job := newTestJob(t, models.KindHunt)
	id := models.MustRecordIDString(job.ID)

	running, err := testDB.TransitionJob(ctx, id, models.JobRunning, models.JobPending)
	require.NoError(t, err)
	assert.Equal(t, models.JobRunning, running.Status)
	require.NotNil(t, running.StartedAt)
	assert.Nil(t, running.CompletedAt)

	// Same transition again must not match.
	_, err = testDB.TransitionJob(ctx, id, models.JobRunning, models.JobPending)
	assert.ErrorIs(t, err, ErrStatusConflict)

	completed, err := testDB.TransitionJob(ctx, id, models.JobCompleted, models.JobRunning)
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	// started_at survives terminal transition
	require.NotNil(t, completed.StartedAt)
	assert.Equal(t, running.StartedAt.Unix(), completed.StartedAt.Unix())

	_, err = testDB.TransitionJob(ctx, "does-not-exist", models.JobRunning, models.JobPending)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordUnitAccounting(t *testing.T) {
	ctx := context.Background()
	job := newTestJob(t, models.KindVerification)
	id := models.MustRecordIDString(job.ID)

	// Units are only recorded against running jobs.
	err := testDB.RecordUnit(ctx, id, models.UnitSucceeded, "unit 1")
	assert.ErrorIs(t, err, ErrStatusConflict)

	_, err = testDB.TransitionJob(ctx, id, models.JobRunning, models.JobPending)
	require.NoError(t, err)
	require.NoError(t, testDB.SetJobTotal(ctx, id, 3))

	require.NoError(t, testDB.RecordUnit(ctx, id, models.UnitSucceeded, "unit 1"))
	require.NoError(t, testDB.RecordUnit(ctx, id, models.UnitSkipped, "unit 2"))
	require.NoError(t, testDB.RecordUnit(ctx, id, models.UnitFailed, "unit 3"))

	got, err := testDB.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalUnits)
	assert.Equal(t, 3, got.ProcessedUnits)
	assert.Equal(t, 1, got.SucceededUnits)
	assert.Equal(t, 1, got.SkippedUnits)
	assert.Equal(t, 1, got.FailedUnits)
	assert.Equal(t, 3, got.Checkpoint)
	assert.Equal(t, "unit 3", got.CurrentTask)
}

func TestFailJobRecordsError(t *testing.T) {
	ctx := context.Background()
	job := newTestJob(t, models.KindHunt)
	id := models.MustRecordIDString(job.ID)

	_, err := testDB.TransitionJob(ctx, id, models.JobRunning, models.JobPending)
	require.NoError(t, err)

	failed, err := testDB.FailJob(ctx, id, models.JobError{
		Kind:    "external_service",
		Message: "model backend unreachable",
	})
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, failed.Status)
	require.NotNil(t, failed.LastError)
	assert.Equal(t, "external_service", failed.LastError.Kind)
	assert.Equal(t, "model backend unreachable", failed.LastError.Message)
	require.NotNil(t, failed.CompletedAt)

	// Terminal jobs cannot fail again.
	_, err = testDB.FailJob(ctx, id, models.JobError{Kind: "orchestration", Message: "x"})
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestCancellationFlag(t *testing.T) {
	ctx := context.Background()
	job := newTestJob(t, models.KindHunt)
	id := models.MustRecordIDString(job.ID)

	requested, err := testDB.CancellationRequested(ctx, id)
	require.NoError(t, err)
	assert.False(t, requested)

	require.NoError(t, testDB.RequestCancel(ctx, id))

	requested, err = testDB.CancellationRequested(ctx, id)
	require.NoError(t, err)
	assert.True(t, requested)

	// The flag is rejected once the job is terminal.
	_, err = testDB.TransitionJob(ctx, id, models.JobCanceled, models.JobPending)
	require.NoError(t, err)
	err = testDB.RequestCancel(ctx, id)
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestListJobsActiveFilter(t *testing.T) {
	ctx := context.Background()
	active := newTestJob(t, models.KindHunt)
	done := newTestJob(t, models.KindHunt)
	doneID := models.MustRecordIDString(done.ID)

	_, err := testDB.TransitionJob(ctx, doneID, models.JobRunning, models.JobPending)
	require.NoError(t, err)
	_, err = testDB.TransitionJob(ctx, doneID, models.JobCompleted, models.JobRunning)
	require.NoError(t, err)

	jobs, err := testDB.ListJobs(ctx, true)
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, j := range jobs {
		ids[models.MustRecordIDString(j.ID)] = true
		assert.True(t, j.Status.Active())
	}
	assert.True(t, ids[models.MustRecordIDString(active.ID)])
	assert.False(t, ids[doneID])
}

func TestDeleteJobCascadesReviewItems(t *testing.T) {
	ctx := context.Background()
	job := newTestJob(t, models.KindHunt)
	id := models.MustRecordIDString(job.ID)

	item := &models.ReviewItem{
		ID:  surrealmodels.NewRecordID("review_item", uuid.New().String()[:8]),
		Job: job.ID,
		Candidate: models.CandidateLead{
			Agency: "GSA",
			Title:  "Orphan check",
			URL:    "https://sam.gov/opp/orphan",
		},
	}
	require.NoError(t, testDB.CreateReviewItem(ctx, item))

	require.NoError(t, testDB.DeleteJob(ctx, id))

	_, err := testDB.GetJob(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = testDB.GetReviewItem(ctx, models.MustRecordIDString(item.ID))
	assert.ErrorIs(t, err, ErrNotFound)
}
