// Package cli implements the taxon command line surface. Commands compose
// the same infrastructure and domain systems as the HTTP server, print one
// line per document outcome, and exit non-zero when any document in a
// batch ends in a failed state.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dhg-platform/taxon/internal/api"
	"github.com/dhg-platform/taxon/internal/config"
	"github.com/dhg-platform/taxon/internal/infrastructure"
	"github.com/dhg-platform/taxon/internal/workflow"
)

// ErrBatchFailures signals that at least one document in a run failed.
// Surfaced as a non-zero process exit for scripting and alerting.
var ErrBatchFailures = errors.New("one or more documents failed")

// withDomain loads configuration, starts infrastructure, and hands the
// assembled domain to fn. The context is cancelled on SIGINT/SIGTERM so
// aborted runs leave in-flight documents pending for the next run.
func withDomain(fn func(ctx context.Context, domain *api.Domain) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	infra, err := infrastructure.New(ctx, cfg)
	if err != nil {
		return err
	}

	if err := infra.Start(); err != nil {
		return err
	}
	infra.Lifecycle.WaitForStartup()
	defer infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())

	domain := api.NewDomain(api.NewRuntime(cfg, infra))
	return fn(ctx, domain)
}

// printSummary writes one line per document outcome followed by the
// aggregate counts.
func printSummary(summary *workflow.RunSummary) {
	for _, o := range summary.Outcomes {
		printOutcome(&o)
	}

	fmt.Printf("\ntotal: %d  classified: %d  failed: %d  skipped: %d\n",
		summary.Total, summary.Classified, summary.Failed, summary.Skipped)
}

func printOutcome(o *workflow.Outcome) {
	switch o.State {
	case workflow.StateClassified:
		confidence := fmt.Sprintf("%.2f", o.Confidence)
		if o.Unconfident {
			confidence = "unconfident"
		}
		fmt.Printf("classified  %s  %s (%s)  %s\n", o.ID, o.DocumentTypeID, confidence, o.Title)
	case workflow.StateFailed:
		fmt.Printf("failed      %s  %s  %s\n", o.ID, o.Reason, o.Title)
	case workflow.StateSkipped:
		fmt.Printf("skipped     %s  %s  %s\n", o.ID, o.Reason, o.Title)
	default:
		fmt.Printf("%-11s %s  %s\n", o.State, o.ID, o.Title)
	}
}
