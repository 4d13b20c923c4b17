package doctypes

import (
	"context"

	"github.com/dhg-platform/taxon/pkg/pagination"
)

// System defines the public contract for document type operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[DocumentType], error)

	Find(ctx context.Context, id string) (*DocumentType, error)
	ListByCategories(ctx context.Context, categories []string) ([]DocumentType, error)
	Create(ctx context.Context, cmd CreateCommand) (*DocumentType, error)
	Delete(ctx context.Context, id string) error
}
