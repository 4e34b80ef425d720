package hunt_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/10thony/CobecDev-sub005/internal/engine"
	"github.com/10thony/CobecDev-sub005/internal/engine/enginetest"
	"github.com/10thony/CobecDev-sub005/internal/hunt"
	"github.com/10thony/CobecDev-sub005/internal/models"
)

// fakeGen returns scripted output per criterion.
type fakeGen struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (g *fakeGen) HuntLeads(_ context.Context, criterion string, _ []string) (string, error) {
	g.calls = append(g.calls, criterion)
	if err := g.errs[criterion]; err != nil {
		return "", err
	}
	return g.outputs[criterion], nil
}

type fakeIndex struct {
	known map[string]bool
}

func (f *fakeIndex) LeadURLExists(_ context.Context, url string) (bool, error) {
	return f.known[url], nil
}

func runHunt(t *testing.T, gen *fakeGen, index *fakeIndex, criteria []string) (*models.Job, *engine.Controller, *enginetest.Store) {
	t.Helper()
	store := enginetest.NewStore()
	ctrl := engine.NewController(store, slog.Default(), nil)
	ctrl.Register(hunt.NewProcessor(gen, index, slog.Default()))

	ctx := context.Background()
	job, err := ctrl.Create(ctx, models.KindHunt, hunt.Params(criteria))
	require.NoError(t, err)

	_, err = ctrl.Start(ctx, models.MustRecordIDString(job.ID))
	require.NoError(t, err)
	ctrl.Wait()

	final, err := ctrl.Get(ctx, models.MustRecordIDString(job.ID))
	require.NoError(t, err)
	return final, ctrl, store
}

func TestHuntPausesWithReviewItems(t *testing.T) {
	gen := &fakeGen{outputs: map[string]string{
		"janitorial texas": "LEAD|Texas FMD|Custodial services|https://txsmartbuy.gov/1|TX|Statewide custodial",
		"it staffing":      "LEAD|GSA|IT staffing BPA|https://sam.gov/2|  |Staff augmentation",
	}}
	job, ctrl, _ := runHunt(t, gen, &fakeIndex{}, []string{"janitorial texas", "it staffing"})

	assert.Equal(t, models.JobPaused, job.Status)
	assert.Equal(t, 2, job.TotalUnits)
	assert.Equal(t, 2, job.ProcessedUnits)
	assert.Equal(t, 2, job.SucceededUnits)
	assert.Equal(t, 2, job.Checkpoint)

	items, err := ctrl.PendingReview(context.Background(), models.MustRecordIDString(job.ID))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []string{"janitorial texas", "it staffing"}, gen.calls)
}

func TestHuntCompletesWhenNothingToReview(t *testing.T) {
	// Both criteria only yield URLs that are already tracked, so no review
	// items exist and the job settles completed without pausing.
	gen := &fakeGen{outputs: map[string]string{
		"dup": "LEAD|GSA|Known lead|https://sam.gov/known|  |Already tracked",
	}}
	index := &fakeIndex{known: map[string]bool{"https://sam.gov/known": true}}
	job, _, store := runHunt(t, gen, index, []string{"dup"})

	assert.Equal(t, models.JobCompleted, job.Status)
	assert.Equal(t, 1, job.SkippedUnits)
	assert.Empty(t, store.Leads())
}

func TestHuntIsolatesGenerationFailures(t *testing.T) {
	gen := &fakeGen{
		outputs: map[string]string{
			"good": "LEAD|DOE|Grid study|https://energy.gov/rfp/9|NM|Transmission study",
		},
		errs: map[string]error{
			"bad": errors.New("model backend unreachable"),
		},
	}
	job, _, _ := runHunt(t, gen, &fakeIndex{}, []string{"bad", "good"})

	assert.Equal(t, models.JobPaused, job.Status)
	assert.Equal(t, 2, job.ProcessedUnits)
	assert.Equal(t, 1, job.FailedUnits)
	assert.Equal(t, 1, job.SucceededUnits)
}

func TestHuntValidateRejectsBadParams(t *testing.T) {
	store := enginetest.NewStore()
	ctrl := engine.NewController(store, slog.Default(), nil)
	ctrl.Register(hunt.NewProcessor(&fakeGen{}, &fakeIndex{}, slog.Default()))

	_, err := ctrl.Create(context.Background(), models.KindHunt, map[string]any{})
	var verr *engine.ValidationError
	require.ErrorAs(t, err, &verr)
}
