package engine

import (
	"context"

	"github.com/10thony/CobecDev-sub005/internal/models"
)

// Store is the durable record store the engine runs against. *db.Client is
// the production implementation; tests use an in-memory one.
//
// Error contract (sentinels from internal/db, checked with errors.Is):
// ErrNotFound for missing records, ErrStatusConflict when a conditional
// transition matched no status, ErrAlreadyResolved for re-resolved review
// items.
type Store interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context, activeOnly bool) ([]models.Job, error)

	// TransitionJob atomically moves a job into to, provided its current
	// status is one of from. Stamps started_at on first entry into running
	// and completed_at once on any terminal transition.
	TransitionJob(ctx context.Context, id string, to models.JobStatus, from ...models.JobStatus) (*models.Job, error)

	// FailJob moves running/paused to failed with last_error set, in one
	// durable write.
	FailJob(ctx context.Context, id string, jobErr models.JobError) (*models.Job, error)

	// RecordUnit increments processed_units plus exactly one outcome
	// counter, advances the checkpoint by one and overwrites current_task,
	// as a single durable write.
	RecordUnit(ctx context.Context, id string, outcome models.UnitOutcome, task string) error

	SetJobTotal(ctx context.Context, id string, total int) error
	SetJobTask(ctx context.Context, id string, task string) error

	// RequestCancel durably sets the cancellation flag on a non-terminal job.
	RequestCancel(ctx context.Context, id string) error
	// CancellationRequested re-reads the durable flag; never served from a
	// process-local cache.
	CancellationRequested(ctx context.Context, id string) (bool, error)

	// DeleteJob removes the job and its dependent review items.
	DeleteJob(ctx context.Context, id string) error

	CreateReviewItem(ctx context.Context, item *models.ReviewItem) error
	GetReviewItem(ctx context.Context, id string) (*models.ReviewItem, error)
	ListPendingReview(ctx context.Context, jobID string) ([]models.ReviewItem, error)
	CountPendingReview(ctx context.Context, jobID string) (int, error)

	// ResolveReviewItem marks a pending item accepted or rejected; accepting
	// commits the candidate as a lead record (with the given id) in the same
	// transaction.
	ResolveReviewItem(ctx context.Context, id string, accept bool, leadID string) (*models.ReviewItem, error)
}
