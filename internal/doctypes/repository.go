package doctypes

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dhg-platform/taxon/pkg/pagination"
	"github.com/dhg-platform/taxon/pkg/query"
	"github.com/dhg-platform/taxon/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a document type repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "doctypes"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[DocumentType], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count document types: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	types, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocumentType)
	if err != nil {
		return nil, fmt.Errorf("query document types: %w", err)
	}

	result := pagination.NewPageResult(types, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id string) (*DocumentType, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", strings.ToUpper(id))

	t, err := repository.QueryOne(ctx, r.db, q, args, scanDocumentType)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &t, nil
}

// ListByCategories returns the vocabulary slice for the given categories,
// or the full vocabulary when categories is empty. Results are ordered by
// mnemonic so prompt assembly sees a stable enumeration.
func (r *repo) ListByCategories(ctx context.Context, categories []string) ([]DocumentType, error) {
	qb := query.NewBuilder(projection, defaultSort)

	if len(categories) > 0 {
		values := make([]any, len(categories))
		for i, c := range categories {
			values[i] = c
		}
		qb.WhereIn("Category", values)
	}

	q, args := qb.Build()
	types, err := repository.QueryMany(ctx, r.db, q, args, scanDocumentType)
	if err != nil {
		return nil, fmt.Errorf("query document types by category: %w", err)
	}

	return types, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*DocumentType, error) {
	id := strings.ToUpper(strings.TrimSpace(cmd.ID))
	if id == "" {
		return nil, ErrInvalidID
	}

	q := `
		INSERT INTO document_types(id, name, category, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, category, description, created_at`

	insertArgs := []any{id, cmd.Name, cmd.Category, cmd.Description}

	t, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (DocumentType, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanDocumentType)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document type created", "id", t.ID, "category", t.Category)
	return &t, nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM document_types WHERE id = $1",
			strings.ToUpper(id),
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document type deleted", "id", id)
	return nil
}
