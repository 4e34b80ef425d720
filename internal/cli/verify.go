package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/10thony/CobecDev-sub005/internal/models"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify all active lead links",
	Long: `Run a verification job over every active lead: each link is fetched and
its verdict (ok, broken, error) is written back onto the lead.

Broken links fail their unit but never abort the run.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ctrl, err := newEngine(ctx, false)
	if err != nil {
		return err
	}

	job, err := ctrl.Create(ctx, models.KindVerification, nil)
	if err != nil {
		return err
	}
	id := models.MustRecordIDString(job.ID)
	fmt.Printf("Verification %s created\n", id)

	job, err = ctrl.Start(ctx, id)
	if err != nil {
		return err
	}

	return watchJob(ctx, ctrl, job)
}
