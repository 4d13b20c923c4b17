package experts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dhg-platform/taxon/pkg/pagination"
)

// System defines the public contract for expert document domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[ExpertDocument], error)

	Find(ctx context.Context, id uuid.UUID) (*ExpertDocument, error)
	ListBySource(ctx context.Context, sourceID uuid.UUID) ([]ExpertDocument, error)
	Create(ctx context.Context, cmd CreateCommand) (*ExpertDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// FetchUnclassified returns up to limit expert documents with no assigned
	// document type, newest first. A non-nil cursor restricts results to rows
	// created strictly before it.
	FetchUnclassified(ctx context.Context, limit int, cursor *time.Time) ([]ExpertDocument, error)

	// UpdateClassification records a classification outcome. Idempotent and
	// never regresses status.
	UpdateClassification(ctx context.Context, id uuid.UUID, update ClassificationUpdate) (*ExpertDocument, error)

	// MarkSkipped marks an expert document as skipped with the given reason.
	MarkSkipped(ctx context.Context, id uuid.UUID, reason string) (*ExpertDocument, error)

	// RecordError annotates an expert document with a processing failure
	// without changing its status.
	RecordError(ctx context.Context, id uuid.UUID, msg string) error
}
