package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/10thony/CobecDev-sub005/internal/models"
)

// CreateJob persists a new job record. The caller assigns the ID and the
// record starts with zero progress and a clear cancellation flag.
func (c *Client) CreateJob(ctx context.Context, job *models.Job) error {
	id, err := models.RecordIDString(job.ID)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}

	results, err := surrealdb.Query[[]models.Job](ctx, c.db, `
		CREATE type::record("job", $id) SET
			kind = $kind,
			status = $status,
			params = $params
		RETURN AFTER
	`, map[string]any{
		"id":     id,
		"kind":   string(job.Kind),
		"status": string(job.Status),
		"params": job.Params,
	})
	if err != nil {
		return fmt.Errorf("create job: %w", wrapQueryError(err))
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		*job = (*results)[0].Result[0]
	}
	return nil
}

// GetJob retrieves a job by ID. Returns ErrNotFound if missing.
func (c *Client) GetJob(ctx context.Context, id string) (*models.Job, error) {
	results, err := surrealdb.Query[[]models.Job](ctx, c.db, `
		SELECT * FROM type::record("job", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get job: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return &(*results)[0].Result[0], nil
}

// ListJobs returns jobs ordered by recency of activity. When activeOnly is
// set, terminal jobs are filtered out.
func (c *Client) ListJobs(ctx context.Context, activeOnly bool) ([]models.Job, error) {
	where := ""
	if activeOnly {
		where = `WHERE status IN ["pending", "running", "paused"]`
	}

	sql := fmt.Sprintf(`
		SELECT * FROM job %s ORDER BY last_activity_at DESC
	`, where)

	results, err := surrealdb.Query[[]models.Job](ctx, c.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Job{}, nil
	}
	return (*results)[0].Result, nil
}

// TransitionJob atomically moves a job into the target status, provided it is
// currently in one of the given from statuses. Timestamps are stamped in the
// same write: started_at on the first entry into running, completed_at once
// on any terminal transition. Returns ErrStatusConflict when the job exists
// but matched none of the from statuses.
func (c *Client) TransitionJob(ctx context.Context, id string, to models.JobStatus, from ...models.JobStatus) (*models.Job, error) {
	assigns := `status = $to, last_activity_at = time::now()`
	if to == models.JobRunning {
		assigns += `, started_at = started_at ?? time::now()`
	}
	if to.Terminal() {
		assigns += `, completed_at = completed_at ?? time::now()`
	}

	sql := fmt.Sprintf(`
		UPDATE type::record("job", $id) SET %s
		WHERE status IN $from
		RETURN AFTER
	`, assigns)

	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}

	results, err := surrealdb.Query[[]models.Job](ctx, c.db, sql, map[string]any{
		"id":   id,
		"to":   string(to),
		"from": fromStrs,
	})
	if err != nil {
		return nil, fmt.Errorf("transition job: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		// Distinguish a missing job from a lost transition race.
		if _, getErr := c.GetJob(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStatusConflict
	}
	return &(*results)[0].Result[0], nil
}

// FailJob moves a job to failed, recording the structured error and echoing
// its message into current_task, all in one durable write.
func (c *Client) FailJob(ctx context.Context, id string, jobErr models.JobError) (*models.Job, error) {
	results, err := surrealdb.Query[[]models.Job](ctx, c.db, `
		UPDATE type::record("job", $id) SET
			status = "failed",
			last_error = $err,
			current_task = $task,
			last_activity_at = time::now(),
			completed_at = completed_at ?? time::now()
		WHERE status IN ["running", "paused"]
		RETURN AFTER
	`, map[string]any{
		"id":   id,
		"err":  map[string]any{"kind": jobErr.Kind, "message": jobErr.Message},
		"task": jobErr.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("fail job: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		if _, getErr := c.GetJob(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStatusConflict
	}
	return &(*results)[0].Result[0], nil
}

// RecordUnit records the outcome of one completed unit: increments
// processed_units plus exactly one outcome counter, advances the checkpoint
// and overwrites current_task, as a single durable write. A crash can never
// separate "processed the unit" from "recorded the checkpoint".
func (c *Client) RecordUnit(ctx context.Context, id string, outcome models.UnitOutcome, task string) error {
	var field string
	switch outcome {
	case models.UnitSucceeded:
		field = "succeeded_units"
	case models.UnitSkipped:
		field = "skipped_units"
	case models.UnitFailed:
		field = "failed_units"
	default:
		return fmt.Errorf("record unit: unknown outcome %q", outcome)
	}

	sql := fmt.Sprintf(`
		UPDATE type::record("job", $id) SET
			processed_units += 1,
			%s += 1,
			checkpoint += 1,
			current_task = $task,
			last_activity_at = time::now()
		WHERE status = "running"
	`, field)

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"id":   id,
		"task": task,
	})
	if err != nil {
		return fmt.Errorf("record unit: %w", wrapQueryError(err))
	}
	return nil
}

// SetJobTotal sets total_units once the processor has sized its plan.
func (c *Client) SetJobTotal(ctx context.Context, id string, total int) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("job", $id) SET
			total_units = $total,
			last_activity_at = time::now()
	`, map[string]any{"id": id, "total": total})
	if err != nil {
		return fmt.Errorf("set job total: %w", wrapQueryError(err))
	}
	return nil
}

// SetJobTask overwrites the human-readable current activity.
func (c *Client) SetJobTask(ctx context.Context, id string, task string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("job", $id) SET
			current_task = $task,
			last_activity_at = time::now()
	`, map[string]any{"id": id, "task": task})
	if err != nil {
		return fmt.Errorf("set job task: %w", wrapQueryError(err))
	}
	return nil
}

// RequestCancel durably sets the cancellation flag. Only non-terminal jobs
// accept the flag; a terminal job yields ErrStatusConflict.
func (c *Client) RequestCancel(ctx context.Context, id string) error {
	results, err := surrealdb.Query[[]models.Job](ctx, c.db, `
		UPDATE type::record("job", $id) SET
			cancellation_requested = true,
			last_activity_at = time::now()
		WHERE status IN ["pending", "running", "paused"]
		RETURN AFTER
	`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("request cancel: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		if _, getErr := c.GetJob(ctx, id); getErr != nil {
			return getErr
		}
		return ErrStatusConflict
	}
	return nil
}

// CancellationRequested re-reads the durable cancellation flag. The flag is
// deliberately never cached in process memory: the process observing it may
// not be the one that set it.
func (c *Client) CancellationRequested(ctx context.Context, id string) (bool, error) {
	results, err := surrealdb.Query[[]struct {
		CancellationRequested bool `json:"cancellation_requested"`
	}](ctx, c.db, `
		SELECT cancellation_requested FROM type::record("job", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return false, fmt.Errorf("read cancellation flag: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return false, ErrNotFound
	}
	return (*results)[0].Result[0].CancellationRequested, nil
}

// DeleteJob removes a job and its dependent review items in one transaction.
// Status gating (terminal only) is enforced by the caller.
func (c *Client) DeleteJob(ctx context.Context, id string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		BEGIN;
		DELETE review_item WHERE job = type::record("job", $id);
		DELETE type::record("job", $id);
		COMMIT;
	`, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("delete job: %w", wrapQueryError(err))
	}
	return nil
}
