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

func newTestReviewItem(t *testing.T, job *models.Job, url string) *models.ReviewItem {
	t.Helper()
	item := &models.ReviewItem{
		ID:  surrealmodels.NewRecordID("review_item", uuid.New().String()[:8]),
		Job: job.ID,
		Candidate: models.CandidateLead{
			Agency:  "Texas FMD",
			Title:   "Custodial services RFP",
			URL:     url,
			State:   "TX",
			Summary: "Statewide custodial contract",
		},
	}
	require.NoError(t, testDB.CreateReviewItem(context.Background(), item))
	return item
}

func TestReviewItemCreateAndList(t *testing.T) {
	ctx := context.Background()
	job := newTestJob(t, models.KindHunt)
	id := models.MustRecordIDString(job.ID)

	first := newTestReviewItem(t, job, "https://txsmartbuy.gov/rfp/1")
	second := newTestReviewItem(t, job, "https://txsmartbuy.gov/rfp/2")

	count, err := testDB.CountPendingReview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	items, err := testDB.ListPendingReview(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.ReviewPending, items[0].Status)

	// Oldest first
	assert.Equal(t, first.Candidate.URL, items[0].Candidate.URL)
	assert.Equal(t, second.Candidate.URL, items[1].Candidate.URL)
}

func TestResolveReviewItemAcceptCreatesLead(t *testing.T) {
	ctx := context.Background()
	job := newTestJob(t, models.KindHunt)
	item := newTestReviewItem(t, job, "https://txsmartbuy.gov/rfp/accept-me")
	itemID := models.MustRecordIDString(item.ID)
	leadID := uuid.New().String()[:8]

	resolved, err := testDB.ResolveReviewItem(ctx, itemID, true, leadID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewAccepted, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	// The lead exists with the candidate's fields, in one transaction with
	// the item update.
	exists, err := testDB.LeadURLExists(ctx, "https://txsmartbuy.gov/rfp/accept-me")
	require.NoError(t, err)
	assert.True(t, exists)

	leads, err := testDB.ListLeads(ctx, true)
	require.NoError(t, err)
	var lead *models.Lead
	for i := range leads {
		if leads[i].URL == "https://txsmartbuy.gov/rfp/accept-me" {
			lead = &leads[i]
		}
	}
	require.NotNil(t, lead)
	assert.Equal(t, "Texas FMD", lead.Agency)
	assert.Equal(t, models.LeadActive, lead.Status)
	assert.Equal(t, models.LeadSourceHunted, lead.Source)

	// Double resolution is rejected, whichever way it goes.
	_, err = testDB.ResolveReviewItem(ctx, itemID, false, uuid.New().String()[:8])
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestResolveReviewItemRejectDiscardsCandidate(t *testing.T) {
	ctx := context.Background()
	job := newTestJob(t, models.KindHunt)
	item := newTestReviewItem(t, job, "https://txsmartbuy.gov/rfp/reject-me")
	itemID := models.MustRecordIDString(item.ID)

	resolved, err := testDB.ResolveReviewItem(ctx, itemID, false, uuid.New().String()[:8])
	require.NoError(t, err)
	assert.Equal(t, models.ReviewRejected, resolved.Status)

	exists, err := testDB.LeadURLExists(ctx, "https://txsmartbuy.gov/rfp/reject-me")
	require.NoError(t, err)
	assert.False(t, exists)

	count, err := testDB.CountPendingReview(ctx, models.MustRecordIDString(job.ID))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestResolveMissingReviewItem(t *testing.T) {
	_, err := testDB.ResolveReviewItem(context.Background(), "does-not-exist", true, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkLeadVerified(t *testing.T) {
	ctx := context.Background()
	lead := &models.Lead{
		ID:     surrealmodels.NewRecordID("lead", uuid.New().String()[:8]),
		Agency: "DOE",
		Title:  "Grid study",
		URL:    "https://energy.gov/rfp/verify-me",
		Status: models.LeadActive,
		Source: models.LeadSourceManual,
	}
	require.NoError(t, testDB.CreateLead(ctx, lead))
	id := models.MustRecordIDString(lead.ID)

	require.NoError(t, testDB.MarkLeadVerified(ctx, id, models.VerifyOK, 200))

	leads, err := testDB.ListActiveLeads(ctx)
	require.NoError(t, err)
	var got *models.Lead
	for i := range leads {
		if models.MustRecordIDString(leads[i].ID) == id {
			got = &leads[i]
		}
	}
	require.NotNil(t, got)
	require.NotNil(t, got.VerifyStatus)
	assert.Equal(t, models.VerifyOK, *got.VerifyStatus)
	require.NotNil(t, got.HTTPStatus)
	assert.Equal(t, 200, *got.HTTPStatus)
	require.NotNil(t, got.LastVerifiedAt)

	// A probe error clears the HTTP status.
	require.NoError(t, testDB.MarkLeadVerified(ctx, id, models.VerifyError, 0))
	leads, err = testDB.ListActiveLeads(ctx)
	require.NoError(t, err)
	for i := range leads {
		if models.MustRecordIDString(leads[i].ID) == id {
			got = &leads[i]
		}
	}
	require.NotNil(t, got.VerifyStatus)
	assert.Equal(t, models.VerifyError, *got.VerifyStatus)
	assert.Nil(t, got.HTTPStatus)
}
