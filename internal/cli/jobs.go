package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/10thony/CobecDev-sub005/internal/engine"
	"github.com/10thony/CobecDev-sub005/internal/models"
)

var jobsActiveOnly bool

var jobsCmd = &cobra.Command{
	Use:   "jobs [job-id]",
	Short: "List or inspect background jobs",
	Long: `List all background jobs or inspect a specific job by ID.

Examples:
  bidhunt jobs           # List all jobs
  bidhunt jobs --active  # Only pending, running and paused jobs
  bidhunt jobs abc123    # Show details for job abc123`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobs,
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Request cancellation of a job",
	Long: `Request cooperative cancellation. A running job stops at its next unit
boundary; already recorded progress is kept. Pending and paused jobs
settle immediately.`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

var resumeCmd = &cobra.Command{
	Use:   "resume <job-id>",
	Short: "Resume a paused job",
	Args:  cobra.ExactArgs(1),
	RunE:  runResume,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a finished job and its review items",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	jobsCmd.Flags().BoolVar(&jobsActiveOnly, "active", false, "only show active jobs")
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ctrl, err := newEngine(ctx, false)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return showJob(ctx, ctrl, args[0])
	}
	return listJobs(ctx, ctrl)
}

func listJobs(ctx context.Context, ctrl *engine.Controller) error {
	var (
		jobs []models.Job
		err  error
	)
	if jobsActiveOnly {
		jobs, err = ctrl.ListActive(ctx)
	} else {
		jobs, err = ctrl.List(ctx)
	}
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("%-10s %-14s %-10s %-10s %s\n", "ID", "KIND", "STATUS", "PROGRESS", "LAST ACTIVITY")
	fmt.Println("------------------------------------------------------------------------")

	for i := range jobs {
		job := &jobs[i]
		progress := fmt.Sprintf("%d", job.ProcessedUnits)
		if job.TotalUnits > 0 {
			progress = fmt.Sprintf("%d/%d", job.ProcessedUnits, job.TotalUnits)
		}
		fmt.Printf("%-10s %-14s %-10s %-10s %s\n",
			models.MustRecordIDString(job.ID), job.Kind, job.Status, progress,
			job.LastActivityAt.Local().Format("15:04:05"))
	}

	return nil
}

func showJob(ctx context.Context, ctrl *engine.Controller, id string) error {
	job, err := ctrl.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	printJob(job)
	return nil
}

func printJob(job *models.Job) {
	fmt.Printf("Job: %s\n", models.MustRecordIDString(job.ID))
	fmt.Printf("  Kind: %s\n", job.Kind)
	fmt.Printf("  Status: %s\n", job.Status)
	if job.CancellationRequested && !job.Status.Terminal() {
		fmt.Println("  Cancellation requested")
	}
	if job.TotalUnits > 0 {
		fmt.Printf("  Progress: %d/%d (checkpoint %d)\n", job.ProcessedUnits, job.TotalUnits, job.Checkpoint)
	} else {
		fmt.Printf("  Progress: %d units\n", job.ProcessedUnits)
	}
	fmt.Printf("  Succeeded/Skipped/Failed: %d/%d/%d\n", job.SucceededUnits, job.SkippedUnits, job.FailedUnits)
	if job.CurrentTask != "" {
		fmt.Printf("  Current task: %s\n", job.CurrentTask)
	}
	fmt.Printf("  Created: %s\n", job.CreatedAt.Local().Format(time.RFC3339))
	if job.StartedAt != nil {
		fmt.Printf("  Started: %s\n", job.StartedAt.Local().Format(time.RFC3339))
	}
	if job.CompletedAt != nil {
		fmt.Printf("  Finished: %s\n", job.CompletedAt.Local().Format(time.RFC3339))
		if job.StartedAt != nil {
			fmt.Printf("  Duration: %s\n", job.CompletedAt.Sub(*job.StartedAt).Round(time.Second))
		}
	}
	if job.LastError != nil {
		fmt.Printf("  Error (%s): %s\n", job.LastError.Kind, job.LastError.Message)
	}
}

func runCancel(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ctrl, err := newEngine(ctx, false)
	if err != nil {
		return err
	}

	job, err := ctrl.Cancel(ctx, args[0])
	if err != nil {
		return err
	}

	if job.Status == models.JobCanceled {
		fmt.Printf("Job %s canceled\n", args[0])
	} else {
		fmt.Printf("Cancellation requested; job %s stops at its next unit boundary\n", args[0])
	}
	return nil
}

func runResume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ctrl, err := newEngine(ctx, true)
	if err != nil {
		return err
	}

	job, err := ctrl.Resume(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Job %s resumed from checkpoint %d\n", args[0], job.Checkpoint)

	return watchJob(ctx, ctrl, job)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ctrl, err := newEngine(ctx, false)
	if err != nil {
		return err
	}

	if err := ctrl.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Job %s deleted\n", args[0])
	return nil
}
