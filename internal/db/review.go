package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/10thony/CobecDev-sub005/internal/models"
)

// CreateReviewItem persists a provisional candidate produced mid-job.
func (c *Client) CreateReviewItem(ctx context.Context, item *models.ReviewItem) error {
	id, err := models.RecordIDString(item.ID)
	if err != nil {
		return fmt.Errorf("create review item: %w", err)
	}
	jobID, err := models.RecordIDString(item.Job)
	if err != nil {
		return fmt.Errorf("create review item: %w", err)
	}

	results, err := surrealdb.Query[[]models.ReviewItem](ctx, c.db, `
		CREATE type::record("review_item", $id) SET
			job = type::record("job", $job_id),
			status = "pending",
			candidate = $candidate
		RETURN AFTER
	`, map[string]any{
		"id":        id,
		"job_id":    jobID,
		"candidate": item.Candidate,
	})
	if err != nil {
		return fmt.Errorf("create review item: %w", wrapQueryError(err))
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		*item = (*results)[0].Result[0]
	}
	return nil
}

// GetReviewItem retrieves a review item by ID. Returns ErrNotFound if missing.
func (c *Client) GetReviewItem(ctx context.Context, id string) (*models.ReviewItem, error) {
	results, err := surrealdb.Query[[]models.ReviewItem](ctx, c.db, `
		SELECT * FROM type::record("review_item", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get review item: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return &(*results)[0].Result[0], nil
}

// ListPendingReview returns the pending items owned by a job, oldest first.
func (c *Client) ListPendingReview(ctx context.Context, jobID string) ([]models.ReviewItem, error) {
	results, err := surrealdb.Query[[]models.ReviewItem](ctx, c.db, `
		SELECT * FROM review_item
		WHERE job = type::record("job", $job_id) AND status = "pending"
		ORDER BY created_at ASC
	`, map[string]any{"job_id": jobID})
	if err != nil {
		return nil, fmt.Errorf("list pending review: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.ReviewItem{}, nil
	}
	return (*results)[0].Result, nil
}

// CountPendingReview returns how many items of a job still await disposition.
func (c *Client) CountPendingReview(ctx context.Context, jobID string) (int, error) {
	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, `
		SELECT count() AS c FROM review_item
		WHERE job = type::record("job", $job_id) AND status = "pending"
		GROUP ALL
	`, map[string]any{"job_id": jobID})
	if err != nil {
		return 0, fmt.Errorf("count pending review: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].C, nil
}

// ResolveReviewItem marks a pending item accepted or rejected. Accepting
// commits the candidate into the lead table in the same transaction, so the
// pending count and the lead table can never disagree. leadID names the lead
// record created on accept; it is ignored on reject.
func (c *Client) ResolveReviewItem(ctx context.Context, id string, accept bool, leadID string) (*models.ReviewItem, error) {
	status := string(models.ReviewRejected)
	if accept {
		status = string(models.ReviewAccepted)
	}

	_, err := surrealdb.Query[any](ctx, c.db, `
		BEGIN;
		LET $item = (SELECT * FROM ONLY type::record("review_item", $id));
		IF $item = NONE {
			THROW "review item not found"
		};
		IF $item.status != "pending" {
			THROW "review item already resolved"
		};
		UPDATE type::record("review_item", $id) SET
			status = $status,
			resolved_at = time::now();
		IF $status = "accepted" {
			CREATE type::record("lead", $lead_id) SET
				agency = $item.candidate.agency ?? "",
				title = $item.candidate.title ?? "",
				url = $item.candidate.url ?? "",
				state = $item.candidate.state,
				status = "active",
				source = "hunted"
		};
		COMMIT;
	`, map[string]any{
		"id":      id,
		"status":  status,
		"lead_id": leadID,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve review item: %w", wrapQueryError(err))
	}

	return c.GetReviewItem(ctx, id)
}
