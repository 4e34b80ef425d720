package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/10thony/CobecDev-sub005/internal/metrics"
	"github.com/10thony/CobecDev-sub005/internal/models"
)

// Runtime is a processor's only handle on its job record. It enforces the
// unit contract: cancellation observed at unit granularity and a single
// durable write per completed unit.
type Runtime struct {
	store   Store
	job     models.Job
	log     *slog.Logger
	metrics *metrics.Collector
}

func newRuntime(store Store, job models.Job, log *slog.Logger, mc *metrics.Collector) *Runtime {
	return &Runtime{store: store, job: job, log: log, metrics: mc}
}

// Job returns the job snapshot taken when this run was launched. Params and
// Checkpoint are the resume inputs; live counters should not be read from it.
func (rt *Runtime) Job() models.Job {
	return rt.job
}

func (rt *Runtime) jobID() string {
	return models.MustRecordIDString(rt.job.ID)
}

// Stopping re-reads the durable cancellation flag. Processors call it before
// dispatching each unit; a true result means stop cleanly and return Stopped.
func (rt *Runtime) Stopping(ctx context.Context) (bool, error) {
	requested, err := rt.store.CancellationRequested(ctx, rt.jobID())
	if err != nil {
		return false, fmt.Errorf("read cancellation flag: %w", err)
	}
	return requested, nil
}

// RecordUnit records one completed unit: exactly one outcome counter and the
// processed count are incremented, the checkpoint advances past the unit and
// current_task is overwritten, all in one durable write.
func (rt *Runtime) RecordUnit(ctx context.Context, outcome models.UnitOutcome, task string) error {
	if err := rt.store.RecordUnit(ctx, rt.jobID(), outcome, task); err != nil {
		return err
	}
	if rt.metrics != nil {
		rt.metrics.UnitProcessed(rt.job.Kind, outcome)
	}
	rt.log.Debug("unit recorded", "job_id", rt.jobID(), "outcome", outcome, "task", task)
	return nil
}

// SetTotal sets total_units once the processor has sized its plan.
func (rt *Runtime) SetTotal(ctx context.Context, total int) error {
	rt.job.TotalUnits = total
	return rt.store.SetJobTotal(ctx, rt.jobID(), total)
}

// SetTask overwrites the human-readable current activity without touching
// counters, for long units that want to report what they are doing.
func (rt *Runtime) SetTask(ctx context.Context, task string) error {
	return rt.store.SetJobTask(ctx, rt.jobID(), task)
}

// AddReviewItem records a provisional candidate for human disposition.
func (rt *Runtime) AddReviewItem(ctx context.Context, candidate models.CandidateLead) (*models.ReviewItem, error) {
	item := &models.ReviewItem{
		ID:        surrealmodels.NewRecordID("review_item", uuid.New().String()[:8]),
		Job:       rt.job.ID,
		Status:    models.ReviewPending,
		Candidate: candidate,
	}
	if err := rt.store.CreateReviewItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add review item: %w", err)
	}
	return item, nil
}
