package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/10thony/CobecDev-sub005/internal/hunt"
	"github.com/10thony/CobecDev-sub005/internal/models"
)

var huntCmd = &cobra.Command{
	Use:   "hunt <criteria-file>",
	Short: "Run an AI lead hunt",
	Long: `Start a lead hunt from a YAML criteria file and watch its progress.

Each criterion is one unit of work: the model proposes candidate leads,
known URLs are skipped, and new candidates land in the review queue. The
hunt pauses once all criteria are processed so the candidates can be
accepted or rejected.

Example criteria file:

  criteria:
    - "janitorial services state of texas"
    - "IT staffing contracts federal"`,
	Args: cobra.ExactArgs(1),
	RunE: runHunt,
}

func init() {
	rootCmd.AddCommand(huntCmd)
}

func runHunt(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	criteria, err := hunt.LoadCriteria(args[0])
	if err != nil {
		return err
	}

	ctrl, err := newEngine(ctx, true)
	if err != nil {
		return err
	}

	job, err := ctrl.Create(ctx, models.KindHunt, hunt.Params(criteria))
	if err != nil {
		return err
	}
	id := models.MustRecordIDString(job.ID)
	fmt.Printf("Hunt %s created with %d criteria\n", id, len(criteria))

	job, err = ctrl.Start(ctx, id)
	if err != nil {
		return err
	}

	return watchJob(ctx, ctrl, job)
}
