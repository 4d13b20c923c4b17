package experts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dhg-platform/taxon/pkg/pagination"
	"github.com/dhg-platform/taxon/pkg/query"
	"github.com/dhg-platform/taxon/pkg/repository"
)

const returning = `id, source_id, summary, document_type_id, status,
				  last_error, created_at, updated_at, classified_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an expert document repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "experts"),
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
) (*pagination.PageResult[ExpertDocument], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Summary")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count expert documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanExpertDocument)
	if err != nil {
		return nil, fmt.Errorf("query expert documents: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*ExpertDocument, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanExpertDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) ListBySource(ctx context.Context, sourceID uuid.UUID) ([]ExpertDocument, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("SourceID", sourceID).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanExpertDocument)
	if err != nil {
		return nil, fmt.Errorf("query expert documents by source: %w", err)
	}

	return items, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*ExpertDocument, error) {
	q := fmt.Sprintf(`
		INSERT INTO expert_documents(id, source_id, summary)
		VALUES ($1, $2, $3)
		RETURNING %s`, returning)

	insertArgs := []any{uuid.New(), cmd.SourceID, cmd.Summary}

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (ExpertDocument, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanExpertDocument)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("expert document created", "id", e.ID, "source_id", e.SourceID)
	return &e, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM expert_documents WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("expert document deleted", "id", id)
	return nil
}

// FetchUnclassified deliberately narrows "unclassified" to rows with no
// document type that are not terminally skipped. Skipped rows also carry a
// NULL type, but they are excluded from batch work for good; re-classifying
// one takes an explicit single-document invocation.
func (r *repo) FetchUnclassified(ctx context.Context, limit int, cursor *time.Time) ([]ExpertDocument, error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereNull("DocumentTypeID").
		WhereNotEquals("Status", StatusSkipped)

	if cursor != nil {
		qb.WhereLess("CreatedAt", *cursor)
	}

	q, args := qb.BuildLimit(limit)
	items, err := repository.QueryMany(ctx, r.db, q, args, scanExpertDocument)
	if err != nil {
		return nil, fmt.Errorf("query unclassified expert documents: %w", err)
	}

	return items, nil
}

func (r *repo) UpdateClassification(
	ctx context.Context,
	id uuid.UUID,
	update ClassificationUpdate,
) (*ExpertDocument, error) {
	if !ValidStatus(update.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, update.Status)
	}

	// The rank guard keeps status monotonic, mirroring StatusAdvances: an
	// update whose status ranks at or below the current one records the
	// document type without moving the status backward. A successful
	// classification also clears last_error.
	q := fmt.Sprintf(`
		UPDATE expert_documents
		SET document_type_id = $1,
			status = CASE WHEN $2 > %s THEN $3 ELSE status END,
			last_error = NULL,
			classified_at = NOW(),
			updated_at = NOW()
		WHERE id = $4
		RETURNING %s`,
		statusRankSQL("status"), returning)

	args := []any{update.DocumentTypeID, statusRank[update.Status], update.Status, id}

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (ExpertDocument, error) {
		return repository.QueryOne(ctx, tx, q, args, scanExpertDocument)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("expert document classified",
		"id", e.ID,
		"document_type_id", update.DocumentTypeID,
		"status", e.Status,
	)
	return &e, nil
}

func (r *repo) MarkSkipped(ctx context.Context, id uuid.UUID, reason string) (*ExpertDocument, error) {
	q := fmt.Sprintf(`
		UPDATE expert_documents
		SET status = CASE WHEN status IN ('processed', 'skipped') THEN status ELSE 'skipped' END,
			last_error = $1,
			updated_at = NOW()
		WHERE id = $2
		RETURNING %s`, returning)

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (ExpertDocument, error) {
		return repository.QueryOne(ctx, tx, q, []any{reason, id}, scanExpertDocument)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("expert document skipped", "id", id, "reason", reason)
	return &e, nil
}

func (r *repo) RecordError(ctx context.Context, id uuid.UUID, msg string) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE expert_documents SET last_error = $1, updated_at = NOW() WHERE id = $2",
			msg, id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Warn("expert document error recorded", "id", id, "error", msg)
	return nil
}
