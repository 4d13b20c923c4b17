package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dhg-platform/taxon/internal/api"
	"github.com/dhg-platform/taxon/internal/workflow"
)

// ClassifySourceCmd classifies a single source document by ID. An explicit
// invocation re-queues the document, so already classified sources are
// classified again.
func ClassifySourceCmd() *cobra.Command {
	var (
		id     string
		prompt string
	)

	cmd := &cobra.Command{
		Use:   "classify-source",
		Short: "Classify a single source document",
		Long: `Classify a single source document by ID, regardless of its current
status. The assigned document type, confidence, and resulting state are
printed to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceID, err := uuid.Parse(id)
			if err != nil {
				return fmt.Errorf("invalid source id %q: %w", id, err)
			}

			return withDomain(func(ctx context.Context, domain *api.Domain) error {
				outcome, err := workflow.ClassifySource(ctx, domain.Workflow, sourceID, workflow.Options{
					PromptName: prompt,
				})
				if err != nil {
					return err
				}

				printOutcome(outcome)
				if outcome.State == workflow.StateFailed {
					return ErrBatchFailures
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&id, "id", "i", "", "source document ID (required)")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "prompt name (default from config)")
	cmd.MarkFlagRequired("id")

	return cmd
}
