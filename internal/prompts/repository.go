package prompts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dhg-platform/taxon/pkg/pagination"
	"github.com/dhg-platform/taxon/pkg/query"
	"github.com/dhg-platform/taxon/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a prompt repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "prompts"),
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
) (*pagination.PageResult[Prompt], error) {
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
		return nil, fmt.Errorf("count prompts: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if err := r.loadCategories(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindByName(ctx context.Context, name string) (*Prompt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Name", name)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if err := r.loadCategories(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Prompt, error) {
	q := `
		INSERT INTO prompts(id, name, template, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, template, description, created_at, updated_at`

	insertArgs := []any{uuid.New(), cmd.Name, cmd.Template, cmd.Description}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		created, err := repository.QueryOne(ctx, tx, q, insertArgs, scanPrompt)
		if err != nil {
			return Prompt{}, err
		}

		if err := replaceCategories(ctx, tx, created.ID, cmd.Categories); err != nil {
			return Prompt{}, err
		}

		created.Categories = cmd.Categories
		return created, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt created", "id", p.ID, "name", p.Name)
	return &p, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error) {
	q := `
		UPDATE prompts
		SET name = $1, template = $2, description = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING id, name, template, description, created_at, updated_at`

	updateArgs := []any{cmd.Name, cmd.Template, cmd.Description, id}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
		updated, err := repository.QueryOne(ctx, tx, q, updateArgs, scanPrompt)
		if err != nil {
			return Prompt{}, err
		}

		if err := replaceCategories(ctx, tx, id, cmd.Categories); err != nil {
			return Prompt{}, err
		}

		updated.Categories = cmd.Categories
		return updated, nil
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt updated", "id", p.ID, "name", p.Name)
	return &p, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM prompts WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("prompt deleted", "id", id)
	return nil
}

func (r *repo) loadCategories(ctx context.Context, p *Prompt) error {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT document_type_category
		 FROM prompt_relationships
		 WHERE prompt_id = $1
		 ORDER BY document_type_category`,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("query prompt categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return fmt.Errorf("scan prompt category: %w", err)
		}
		p.Categories = append(p.Categories, c)
	}

	return rows.Err()
}

func replaceCategories(ctx context.Context, tx *sql.Tx, promptID uuid.UUID, categories []string) error {
	if _, err := tx.ExecContext(
		ctx,
		"DELETE FROM prompt_relationships WHERE prompt_id = $1",
		promptID,
	); err != nil {
		return fmt.Errorf("clear prompt categories: %w", err)
	}

	for _, c := range categories {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO prompt_relationships(prompt_id, document_type_category)
			 VALUES ($1, $2)`,
			promptID, c,
		); err != nil {
			return fmt.Errorf("insert prompt category: %w", err)
		}
	}

	return nil
}
