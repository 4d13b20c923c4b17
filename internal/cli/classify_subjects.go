package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dhg-platform/taxon/internal/api"
	"github.com/dhg-platform/taxon/internal/workflow"
)

// ClassifySubjectsCmd runs a classification batch over unclassified expert
// documents. Expert documents carry their summary inline, so no blob
// download happens on this path.
func ClassifySubjectsCmd() *cobra.Command {
	var (
		limit       int
		concurrency int
		prompt      string
	)

	cmd := &cobra.Command{
		Use:   "classify-subjects",
		Short: "Classify a batch of unclassified expert documents",
		Long: `Fetch up to N unclassified expert documents and classify each one
against the configured vocabulary. One line is printed per document,
followed by a summary. The exit code is non-zero if any document failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDomain(func(ctx context.Context, domain *api.Domain) error {
				if concurrency > 0 {
					domain.Workflow.Concurrency = concurrency
				}

				summary, err := workflow.RunExperts(ctx, domain.Workflow, workflow.Options{
					Limit:      limit,
					PromptName: prompt,
				})
				if err != nil {
					return err
				}

				printSummary(summary)
				if summary.HasFailures() {
					return ErrBatchFailures
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum documents to classify (default from config)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "concurrent workers (default from config)")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "prompt name (default from config)")

	return cmd
}
