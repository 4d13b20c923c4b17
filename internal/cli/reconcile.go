package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhg-platform/taxon/internal/api"
	"github.com/dhg-platform/taxon/internal/workflow"
)

// ReconcileCmd reports rows whose document type and status disagree.
func ReconcileCmd() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Detect documents with a type assigned but an unadvanced status",
		Long: `Scan sources and expert documents for rows that carry a document type
but whose status never advanced to processed. Drifted rows are listed;
with --fix, each one's status is advanced through the same idempotent
update the classification pipeline uses.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDomain(func(ctx context.Context, domain *api.Domain) error {
				report, err := workflow.Reconcile(ctx, domain.Workflow, fix)
				if err != nil {
					return err
				}

				for _, d := range report.Sources {
					fmt.Printf("source  %s  %s  status=%s  %s\n", d.ID, d.DocumentTypeID, d.Status, d.Title)
				}
				for _, d := range report.Experts {
					fmt.Printf("expert  %s  %s  status=%s  %s\n", d.ID, d.DocumentTypeID, d.Status, d.Title)
				}

				if report.Total() == 0 {
					fmt.Println("no drift detected")
					return nil
				}

				fmt.Printf("\ndrifted: %d  fixed: %d\n", report.Total(), report.Fixed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "advance drifted rows to processed")

	return cmd
}
