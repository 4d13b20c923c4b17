package sources

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dhg-platform/taxon/pkg/pagination"
	"github.com/dhg-platform/taxon/pkg/query"
	"github.com/dhg-platform/taxon/pkg/repository"
	"github.com/dhg-platform/taxon/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a source repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "sources"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Source], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "StorageKey")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count sources: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSource)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Source, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	src, err := repository.QueryOne(ctx, r.db, q, args, scanSource)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &src, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Source, error) {
	id := uuid.New()
	key := buildStorageKey(id, sanitizeTitle(cmd.Title))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.MimeType); err != nil {
		return nil, fmt.Errorf("upload source blob: %w", err)
	}

	q := `
		INSERT INTO sources(id, title, storage_key, mime_type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, storage_key, mime_type, document_type_id, status,
				  last_error, created_at, updated_at, classified_at`

	insertArgs := []any{id, cmd.Title, key, cmd.MimeType}

	src, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Source, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanSource)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("source created", "id", src.ID, "title", src.Title)
	return &src, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	src, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM sources WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, src.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", src.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("source deleted", "id", id)
	return nil
}

// FetchUnclassified deliberately narrows "unclassified" to rows with no
// document type that are not terminally skipped. Skipped rows also carry a
// NULL type, but they are excluded from batch work for good; re-classifying
// one takes an explicit single-document invocation.
func (r *repo) FetchUnclassified(ctx context.Context, limit int, cursor *time.Time) ([]Source, error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereNull("DocumentTypeID").
		WhereNotEquals("Status", StatusSkipped)

	if cursor != nil {
		qb.WhereLess("CreatedAt", *cursor)
	}

	q, args := qb.BuildLimit(limit)
	items, err := repository.QueryMany(ctx, r.db, q, args, scanSource)
	if err != nil {
		return nil, fmt.Errorf("query unclassified sources: %w", err)
	}

	return items, nil
}

func (r *repo) UpdateClassification(
	ctx context.Context,
	id uuid.UUID,
	update ClassificationUpdate,
) (*Source, error) {
	if !ValidStatus(update.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, update.Status)
	}

	// The rank guard keeps status monotonic, mirroring StatusAdvances: an
	// update whose status ranks at or below the current one records the
	// document type without moving the status backward. A successful
	// classification also clears last_error.
	q := fmt.Sprintf(`
		UPDATE sources
		SET document_type_id = $1,
			status = CASE WHEN $2 > %s THEN $3 ELSE status END,
			last_error = NULL,
			classified_at = NOW(),
			updated_at = NOW()
		WHERE id = $4
		RETURNING id, title, storage_key, mime_type, document_type_id, status,
				  last_error, created_at, updated_at, classified_at`,
		statusRankSQL("status"))

	args := []any{update.DocumentTypeID, statusRank[update.Status], update.Status, id}

	src, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Source, error) {
		return repository.QueryOne(ctx, tx, q, args, scanSource)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("source classified",
		"id", src.ID,
		"document_type_id", update.DocumentTypeID,
		"status", src.Status,
	)
	return &src, nil
}

func (r *repo) MarkSkipped(ctx context.Context, id uuid.UUID, reason string) (*Source, error) {
	q := `
		UPDATE sources
		SET status = CASE WHEN status IN ('processed', 'skipped') THEN status ELSE 'skipped' END,
			last_error = $1,
			updated_at = NOW()
		WHERE id = $2
		RETURNING id, title, storage_key, mime_type, document_type_id, status,
				  last_error, created_at, updated_at, classified_at`

	src, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Source, error) {
		return repository.QueryOne(ctx, tx, q, []any{reason, id}, scanSource)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("source skipped", "id", id, "reason", reason)
	return &src, nil
}

func (r *repo) RecordError(ctx context.Context, id uuid.UUID, msg string) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE sources SET last_error = $1, updated_at = NOW() WHERE id = $2",
			msg, id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Warn("source error recorded", "id", id, "error", msg)
	return nil
}

func buildStorageKey(id uuid.UUID, title string) string {
	return fmt.Sprintf("sources/%s/%s", id, title)
}

func sanitizeTitle(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "source"
	}
	return url.PathEscape(name)
}
