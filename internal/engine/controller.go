package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/10thony/CobecDev-sub005/internal/db"
	"github.com/10thony/CobecDev-sub005/internal/metrics"
	"github.com/10thony/CobecDev-sub005/internal/models"
)

// Controller owns the job lifecycle. All status changes go through the
// store's conditional transitions, so concurrent callers race safely: at most
// one Start (or Resume) per job wins and launches a runner.
type Controller struct {
	store   Store
	procs   map[models.JobKind]Processor
	log     *slog.Logger
	metrics *metrics.Collector

	wg sync.WaitGroup
}

func NewController(store Store, log *slog.Logger, mc *metrics.Collector) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		store:   store,
		procs:   make(map[models.JobKind]Processor),
		log:     log,
		metrics: mc,
	}
}

// Register installs the processor for its job kind.
func (c *Controller) Register(p Processor) {
	c.procs[p.Kind()] = p
}

// Create validates params and persists a new pending job. Nothing runs yet.
func (c *Controller) Create(ctx context.Context, kind models.JobKind, params map[string]any) (*models.Job, error) {
	proc, ok := c.procs[kind]
	if !ok {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown job kind %q", kind)}
	}
	if err := proc.Validate(params); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, &ValidationError{Msg: err.Error()}
	}

	job := &models.Job{
		ID:     surrealmodels.NewRecordID("job", uuid.New().String()[:8]),
		Kind:   kind,
		Status: models.JobPending,
		Params: params,
	}
	if err := c.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	c.log.Info("job created", "job_id", models.MustRecordIDString(job.ID), "kind", kind)
	return job, nil
}

// Start moves a pending job to running and launches its runner. Starting a
// job in any other status is rejected without side effects.
func (c *Controller) Start(ctx context.Context, id string) (*models.Job, error) {
	job, err := c.transition(ctx, "start", id, models.JobRunning, models.JobPending)
	if err != nil {
		return nil, err
	}
	c.launch(*job)
	return job, nil
}

// Resume moves a paused job back to running and launches a runner that picks
// up from the stored checkpoint.
func (c *Controller) Resume(ctx context.Context, id string) (*models.Job, error) {
	job, err := c.transition(ctx, "resume", id, models.JobRunning, models.JobPaused)
	if err != nil {
		return nil, err
	}
	c.launch(*job)
	return job, nil
}

// Cancel requests cooperative cancellation. Pending and paused jobs settle to
// canceled immediately; a running job keeps going until its runner observes
// the flag at the next unit boundary. Canceling an already canceled job is a
// no-op; canceling completed or failed jobs is rejected.
func (c *Controller) Cancel(ctx context.Context, id string) (*models.Job, error) {
	err := c.store.RequestCancel(ctx, id)
	if errors.Is(err, db.ErrStatusConflict) {
		job, gerr := c.store.GetJob(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		if job.Status == models.JobCanceled {
			return job, nil
		}
		return nil, &InvalidStateError{Op: "cancel", JobID: id, Status: job.Status}
	}
	if err != nil {
		return nil, fmt.Errorf("cancel job: %w", err)
	}

	// No runner holds pending or paused jobs, settle them right here. A
	// conflict means a concurrent start or the runner got there first.
	job, err := c.store.TransitionJob(ctx, id, models.JobCanceled, models.JobPending, models.JobPaused)
	if errors.Is(err, db.ErrStatusConflict) {
		return c.store.GetJob(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("cancel job: %w", err)
	}

	c.log.Info("job canceled", "job_id", id)
	return job, nil
}

// Delete removes a terminal job and its review items. Active jobs must be
// canceled first.
func (c *Controller) Delete(ctx context.Context, id string) error {
	job, err := c.store.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if !job.Status.Terminal() {
		return &InvalidStateError{Op: "delete", JobID: id, Status: job.Status}
	}
	if err := c.store.DeleteJob(ctx, id); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	c.log.Info("job deleted", "job_id", id)
	return nil
}

func (c *Controller) Get(ctx context.Context, id string) (*models.Job, error) {
	return c.store.GetJob(ctx, id)
}

func (c *Controller) List(ctx context.Context) ([]models.Job, error) {
	return c.store.ListJobs(ctx, false)
}

func (c *Controller) ListActive(ctx context.Context) ([]models.Job, error) {
	return c.store.ListJobs(ctx, true)
}

// Recover relaunches runners for jobs left in running by a previous process.
// Their checkpoints are durable, so work continues at the first unit that was
// never recorded. Paused and pending jobs are left for their usual triggers.
func (c *Controller) Recover(ctx context.Context) (int, error) {
	jobs, err := c.store.ListJobs(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("recover jobs: %w", err)
	}

	recovered := 0
	for _, job := range jobs {
		if job.Status != models.JobRunning {
			continue
		}
		if _, ok := c.procs[job.Kind]; !ok {
			c.log.Warn("no processor for recovered job", "job_id", models.MustRecordIDString(job.ID), "kind", job.Kind)
			continue
		}
		c.log.Info("recovering interrupted job",
			"job_id", models.MustRecordIDString(job.ID),
			"kind", job.Kind,
			"checkpoint", job.Checkpoint)
		c.launch(job)
		recovered++
	}
	return recovered, nil
}

// Wait blocks until every launched runner has settled its job. Used on
// shutdown and in tests.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) transition(ctx context.Context, op, id string, to models.JobStatus, from ...models.JobStatus) (*models.Job, error) {
	job, err := c.store.TransitionJob(ctx, id, to, from...)
	if errors.Is(err, db.ErrStatusConflict) {
		current, gerr := c.store.GetJob(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		return nil, &InvalidStateError{Op: op, JobID: id, Status: current.Status}
	}
	if err != nil {
		return nil, fmt.Errorf("%s job: %w", op, err)
	}
	return job, nil
}

// launch starts the runner goroutine for a job already moved to running.
// Runners are detached from the caller's context: stopping a run is done
// through the durable cancellation flag, not context cancellation.
func (c *Controller) launch(job models.Job) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(context.Background(), job)
	}()
}

func (c *Controller) run(ctx context.Context, job models.Job) {
	id := models.MustRecordIDString(job.ID)
	log := c.log.With("job_id", id, "kind", job.Kind)

	if c.metrics != nil {
		c.metrics.JobStarted(job.Kind)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("job runner panicked", "panic", r)
			c.fail(ctx, id, models.JobError{
				Kind:    ErrKindOrchestration,
				Message: fmt.Sprintf("runner panic: %v", r),
			})
			c.finished(ctx, job.Kind, id)
		}
	}()

	proc := c.procs[job.Kind]

	// A run may cover several processor invocations: after a review round
	// resolves with units remaining, the loop continues from the stored
	// checkpoint without going through paused.
	current := job
	for {
		rt := newRuntime(c.store, current, log, c.metrics)
		result, err := proc.Run(ctx, rt)
		if err != nil {
			log.Error("job failed", "error", err)
			c.fail(ctx, id, models.JobError{Kind: errorKind(err), Message: err.Error()})
			c.finished(ctx, job.Kind, id)
			return
		}

		switch result {
		case Stopped:
			if _, err := c.store.TransitionJob(ctx, id, models.JobCanceled, models.JobRunning); err != nil {
				log.Error("settle canceled failed", "error", err)
			}
			log.Info("job canceled by request")
			c.finished(ctx, job.Kind, id)
			return

		case ReviewBoundary:
			pending, err := c.store.CountPendingReview(ctx, id)
			if err != nil {
				log.Error("count pending review failed", "error", err)
				c.fail(ctx, id, models.JobError{Kind: ErrKindOrchestration, Message: err.Error()})
				c.finished(ctx, job.Kind, id)
				return
			}
			if pending > 0 {
				if _, err := c.store.TransitionJob(ctx, id, models.JobPaused, models.JobRunning); err != nil {
					log.Error("pause for review failed", "error", err)
				}
				log.Info("job paused for review", "pending_items", pending)
				c.finished(ctx, job.Kind, id)
				return
			}

			// Nothing to review. Keep going if units remain, otherwise
			// the job is done.
			fresh, err := c.store.GetJob(ctx, id)
			if err != nil {
				log.Error("reload job failed", "error", err)
				c.finished(ctx, job.Kind, id)
				return
			}
			if fresh.TotalUnits > 0 && fresh.Checkpoint < fresh.TotalUnits {
				current = *fresh
				continue
			}
			c.complete(ctx, id, log)
			c.finished(ctx, job.Kind, id)
			return

		default: // Done
			c.complete(ctx, id, log)
			c.finished(ctx, job.Kind, id)
			return
		}
	}
}

func (c *Controller) complete(ctx context.Context, id string, log *slog.Logger) {
	job, err := c.store.TransitionJob(ctx, id, models.JobCompleted, models.JobRunning)
	if err != nil {
		log.Error("settle completed failed", "error", err)
		return
	}
	log.Info("job completed",
		"processed", job.ProcessedUnits,
		"succeeded", job.SucceededUnits,
		"skipped", job.SkippedUnits,
		"failed", job.FailedUnits)
}

func (c *Controller) fail(ctx context.Context, id string, jobErr models.JobError) {
	if _, err := c.store.FailJob(ctx, id, jobErr); err != nil {
		c.log.Error("record job failure failed", "job_id", id, "error", err)
	}
}

func (c *Controller) finished(ctx context.Context, kind models.JobKind, id string) {
	if c.metrics == nil {
		return
	}
	status := models.JobFailed
	if job, err := c.store.GetJob(ctx, id); err == nil {
		status = job.Status
	}
	c.metrics.JobFinished(kind, status)
}
