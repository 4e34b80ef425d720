package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/10thony/CobecDev-sub005/internal/db"
	"github.com/10thony/CobecDev-sub005/internal/models"
)

// PendingReview lists a job's unresolved review items, oldest first.
func (c *Controller) PendingReview(ctx context.Context, jobID string) ([]models.ReviewItem, error) {
	return c.store.ListPendingReview(ctx, jobID)
}

// Accept resolves a pending review item as accepted, which commits its
// candidate into the lead table in the same transaction.
func (c *Controller) Accept(ctx context.Context, itemID string) (*models.ReviewItem, error) {
	return c.resolve(ctx, itemID, true)
}

// Reject resolves a pending review item as rejected and discards the
// candidate.
func (c *Controller) Reject(ctx context.Context, itemID string) (*models.ReviewItem, error) {
	return c.resolve(ctx, itemID, false)
}

func (c *Controller) resolve(ctx context.Context, itemID string, accept bool) (*models.ReviewItem, error) {
	item, err := c.store.ResolveReviewItem(ctx, itemID, accept, uuid.New().String()[:8])
	if err != nil {
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.ReviewResolved(accept)
	}

	jobID := models.MustRecordIDString(item.Job)
	c.log.Info("review item resolved",
		"item_id", itemID,
		"job_id", jobID,
		"accepted", accept)

	if err := c.advanceAfterReview(ctx, jobID); err != nil {
		return nil, fmt.Errorf("advance after review: %w", err)
	}
	return item, nil
}

// advanceAfterReview moves a paused job forward once its last pending review
// item is resolved, so no job is ever stranded in paused with an empty review
// queue. Concurrent resolvers may race here; losing the status transition
// means another caller already advanced the job.
func (c *Controller) advanceAfterReview(ctx context.Context, jobID string) error {
	pending, err := c.store.CountPendingReview(ctx, jobID)
	if err != nil {
		return err
	}
	if pending > 0 {
		return nil
	}

	job, err := c.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.JobPaused {
		return nil
	}

	if job.UnitsRemain() && !job.CancellationRequested {
		resumed, err := c.store.TransitionJob(ctx, jobID, models.JobRunning, models.JobPaused)
		if errors.Is(err, db.ErrStatusConflict) {
			return nil
		}
		if err != nil {
			return err
		}
		c.log.Info("job resumed after review", "job_id", jobID, "checkpoint", resumed.Checkpoint)
		c.launch(*resumed)
		return nil
	}

	to := models.JobCompleted
	if job.CancellationRequested {
		to = models.JobCanceled
	}
	if _, err := c.store.TransitionJob(ctx, jobID, to, models.JobPaused); err != nil {
		if errors.Is(err, db.ErrStatusConflict) {
			return nil
		}
		return err
	}
	c.log.Info("job settled after review", "job_id", jobID, "status", to)
	return nil
}
