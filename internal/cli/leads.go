package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/10thony/CobecDev-sub005/internal/models"
)

var leadsActiveOnly bool

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List tracked leads",
	Args:  cobra.NoArgs,
	RunE:  runLeads,
}

func init() {
	leadsCmd.Flags().BoolVar(&leadsActiveOnly, "active", false, "only show active leads")
	rootCmd.AddCommand(leadsCmd)
}

func runLeads(cmd *cobra.Command, args []string) error {
	leads, err := dbClient.ListLeads(cmd.Context(), leadsActiveOnly)
	if err != nil {
		return fmt.Errorf("list leads: %w", err)
	}

	if len(leads) == 0 {
		fmt.Println("No leads found")
		return nil
	}

	for i := range leads {
		lead := &leads[i]
		verdict := "unverified"
		if lead.VerifyStatus != nil {
			verdict = *lead.VerifyStatus
			if lead.HTTPStatus != nil {
				verdict = fmt.Sprintf("%s (%d)", verdict, *lead.HTTPStatus)
			}
		}
		fmt.Printf("%-10s %-8s %-14s %s\n",
			models.MustRecordIDString(lead.ID), lead.Status, verdict, lead.Title)
		fmt.Printf("           %s\n", lead.URL)
	}
	return nil
}
