package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/10thony/CobecDev-sub005/internal/models"
)

var reviewCmd = &cobra.Command{
	Use:   "review <job-id>",
	Short: "List a job's pending review items",
	Long: `List the candidates a hunt parked for review.

Accepting a candidate commits it to the lead table; rejecting discards it.
Once the last item is resolved the paused hunt moves on by itself.

Examples:
  bidhunt review abc123            # List pending items for hunt abc123
  bidhunt review accept item456    # Accept a candidate
  bidhunt review reject item789    # Reject a candidate`,
	Args: cobra.ExactArgs(1),
	RunE: runReviewList,
}

var reviewAcceptCmd = &cobra.Command{
	Use:   "accept <item-id>",
	Short: "Accept a candidate lead",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewResolve(true),
}

var reviewRejectCmd = &cobra.Command{
	Use:   "reject <item-id>",
	Short: "Reject a candidate lead",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewResolve(false),
}

func init() {
	reviewCmd.AddCommand(reviewAcceptCmd)
	reviewCmd.AddCommand(reviewRejectCmd)
	rootCmd.AddCommand(reviewCmd)
}

func runReviewList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ctrl, err := newEngine(ctx, false)
	if err != nil {
		return err
	}

	items, err := ctrl.PendingReview(ctx, args[0])
	if err != nil {
		return fmt.Errorf("list review items: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("No pending review items")
		return nil
	}

	fmt.Printf("%d pending item(s) for job %s:\n\n", len(items), args[0])
	for i := range items {
		item := &items[i]
		fmt.Printf("Item: %s\n", models.MustRecordIDString(item.ID))
		fmt.Printf("  Agency: %s\n", item.Candidate.Agency)
		fmt.Printf("  Title:  %s\n", item.Candidate.Title)
		fmt.Printf("  URL:    %s\n", item.Candidate.URL)
		if item.Candidate.State != "" {
			fmt.Printf("  State:  %s\n", item.Candidate.State)
		}
		if item.Candidate.Summary != "" {
			fmt.Printf("  Summary: %s\n", item.Candidate.Summary)
		}
		fmt.Println()
	}
	return nil
}

func runReviewResolve(accept bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ctrl, err := newEngine(ctx, false)
		if err != nil {
			return err
		}

		var item *models.ReviewItem
		if accept {
			item, err = ctrl.Accept(ctx, args[0])
		} else {
			item, err = ctrl.Reject(ctx, args[0])
		}
		if err != nil {
			return err
		}

		jobID := models.MustRecordIDString(item.Job)
		if accept {
			fmt.Printf("Accepted %q\n", item.Candidate.Title)
		} else {
			fmt.Printf("Rejected %q\n", item.Candidate.Title)
		}

		remaining, err := ctrl.PendingReview(ctx, jobID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			fmt.Printf("%d item(s) left for job %s\n", len(remaining), jobID)
			return nil
		}

		// The resolution may have relaunched the hunt in this process;
		// let it settle before exiting.
		ctrl.Wait()
		job, err := ctrl.Get(ctx, jobID)
		if err != nil {
			return err
		}
		fmt.Printf("Review queue empty; job %s is now %s\n", jobID, job.Status)
		return nil
	}
}
