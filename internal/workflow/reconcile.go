package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dhg-platform/taxon/internal/experts"
	"github.com/dhg-platform/taxon/internal/sources"
	"github.com/dhg-platform/taxon/pkg/pagination"
)

// Drift describes a row whose document type and status disagree: a type is
// assigned but the status still reads as unclassified.
type Drift struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	DocumentTypeID string    `json:"document_type_id"`
	Status         string    `json:"status"`
}

// ReconcileReport lists detected drift and how much of it was corrected.
type ReconcileReport struct {
	Sources []Drift `json:"sources"`
	Experts []Drift `json:"experts"`
	Fixed   int     `json:"fixed"`
}

// Total returns the number of drifted rows across both stores.
func (r *ReconcileReport) Total() int {
	return len(r.Sources) + len(r.Experts)
}

// Reconcile detects rows with a non-null document type whose status never
// advanced. Historical rows are reported, not silently rewritten; when fix
// is set, each drifted row's status is advanced to processed through the
// same idempotent update the pipeline uses.
func Reconcile(ctx context.Context, rt *Runtime, fix bool) (*ReconcileReport, error) {
	report := &ReconcileReport{}

	srcDrift, err := driftedSources(ctx, rt)
	if err != nil {
		return nil, err
	}
	report.Sources = srcDrift

	expDrift, err := driftedExperts(ctx, rt)
	if err != nil {
		return nil, err
	}
	report.Experts = expDrift

	if report.Total() > 0 {
		rt.Logger.Warn("status drift detected",
			"sources", len(report.Sources),
			"experts", len(report.Experts),
		)
	}

	if !fix {
		return report, nil
	}

	for _, d := range report.Sources {
		_, err := rt.Sources.UpdateClassification(ctx, d.ID, sources.ClassificationUpdate{
			DocumentTypeID: d.DocumentTypeID,
			Status:         sources.StatusProcessed,
		})
		if err != nil {
			return report, fmt.Errorf("fix source %s: %w", d.ID, err)
		}
		report.Fixed++
	}

	for _, d := range report.Experts {
		_, err := rt.Experts.UpdateClassification(ctx, d.ID, experts.ClassificationUpdate{
			DocumentTypeID: d.DocumentTypeID,
			Status:         experts.StatusProcessed,
		})
		if err != nil {
			return report, fmt.Errorf("fix expert document %s: %w", d.ID, err)
		}
		report.Fixed++
	}

	return report, nil
}

func driftedSources(ctx context.Context, rt *Runtime) ([]Drift, error) {
	var drift []Drift

	for _, status := range []string{sources.StatusUnprocessed, sources.StatusNeedsClassification} {
		page := 1
		for {
			result, err := rt.Sources.List(ctx,
				pagination.PageRequest{Page: page, PageSize: rt.fetchBatchSize()},
				sources.Filters{Status: &status},
			)
			if err != nil {
				return nil, fmt.Errorf("list sources with status %q: %w", status, err)
			}

			for _, s := range result.Data {
				if s.DocumentTypeID != nil {
					drift = append(drift, Drift{
						ID:             s.ID,
						Title:          s.Title,
						DocumentTypeID: *s.DocumentTypeID,
						Status:         s.Status,
					})
				}
			}

			if page >= result.TotalPages {
				break
			}
			page++
		}
	}

	return drift, nil
}

func driftedExperts(ctx context.Context, rt *Runtime) ([]Drift, error) {
	var drift []Drift

	for _, status := range []string{experts.StatusUnprocessed, experts.StatusNeedsClassification} {
		page := 1
		for {
			result, err := rt.Experts.List(ctx,
				pagination.PageRequest{Page: page, PageSize: rt.fetchBatchSize()},
				experts.Filters{Status: &status},
			)
			if err != nil {
				return nil, fmt.Errorf("list expert documents with status %q: %w", status, err)
			}

			for _, e := range result.Data {
				if e.DocumentTypeID != nil {
					drift = append(drift, Drift{
						ID:             e.ID,
						Title:          e.ID.String(),
						DocumentTypeID: *e.DocumentTypeID,
						Status:         e.Status,
					})
				}
			}

			if page >= result.TotalPages {
				break
			}
			page++
		}
	}

	return drift, nil
}
