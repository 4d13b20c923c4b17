package sources

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dhg-platform/taxon/pkg/pagination"
)

// System defines the public contract for source domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Source], error)

	Find(ctx context.Context, id uuid.UUID) (*Source, error)
	Create(ctx context.Context, cmd CreateCommand) (*Source, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// FetchUnclassified returns up to limit sources with no assigned document
	// type, newest first. A non-nil cursor restricts results to sources created
	// strictly before it, so repeated calls within a run never re-fetch rows
	// already seen.
	FetchUnclassified(ctx context.Context, limit int, cursor *time.Time) ([]Source, error)

	// UpdateClassification records a classification outcome. It is idempotent
	// and never regresses status: re-applying the same outcome is a no-op, and
	// an update whose status ranks below the current one leaves status alone
	// while still recording the document type.
	UpdateClassification(ctx context.Context, id uuid.UUID, update ClassificationUpdate) (*Source, error)

	// MarkSkipped marks a source as skipped with the given reason.
	MarkSkipped(ctx context.Context, id uuid.UUID, reason string) (*Source, error)

	// RecordError annotates a source with a processing failure without
	// changing its status.
	RecordError(ctx context.Context, id uuid.UUID, msg string) error
}
