package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dhg-platform/taxon/internal/experts"
	"github.com/dhg-platform/taxon/internal/sources"
)

// item is a classifiable document drawn from either store. ref is
// target-specific: the blob storage key for sources, the summary text
// itself for expert documents.
type item struct {
	id        uuid.UUID
	title     string
	ref       string
	createdAt time.Time
}

// target abstracts the two classifiable stores so the batch runner can
// drive either with the same pipeline. Store calls go through the
// runtime's retryStore, so transient store unavailability is retried
// with bounded backoff before an operation is reported as failed.
type target interface {
	label() string
	fetch(ctx context.Context, limit int, cursor *time.Time) ([]item, error)
	content(ctx context.Context, it item) (string, error)
	update(ctx context.Context, id uuid.UUID, c *Classification) error
	skip(ctx context.Context, id uuid.UUID, reason string) error
	fail(ctx context.Context, id uuid.UUID, msg string) error
}

type sourceTarget struct {
	rt *Runtime
}

func (t *sourceTarget) label() string { return "sources" }

func (t *sourceTarget) fetch(ctx context.Context, limit int, cursor *time.Time) ([]item, error) {
	var fetched []sources.Source
	err := t.rt.retryStore(ctx, func(ctx context.Context) error {
		var err error
		fetched, err = t.rt.Sources.FetchUnclassified(ctx, limit, cursor)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]item, len(fetched))
	for i, s := range fetched {
		items[i] = item{
			id:        s.ID,
			title:     s.Title,
			ref:       s.StorageKey,
			createdAt: s.CreatedAt,
		}
	}
	return items, nil
}

func (t *sourceTarget) content(ctx context.Context, it item) (string, error) {
	return t.rt.Storage.DownloadText(ctx, it.ref)
}

func (t *sourceTarget) update(ctx context.Context, id uuid.UUID, c *Classification) error {
	return t.rt.retryStore(ctx, func(ctx context.Context) error {
		_, err := t.rt.Sources.UpdateClassification(ctx, id, sources.ClassificationUpdate{
			DocumentTypeID: c.DocumentTypeID,
			Confidence:     c.Confidence,
			Status:         sources.StatusProcessed,
		})
		return err
	})
}

func (t *sourceTarget) skip(ctx context.Context, id uuid.UUID, reason string) error {
	return t.rt.retryStore(ctx, func(ctx context.Context) error {
		_, err := t.rt.Sources.MarkSkipped(ctx, id, reason)
		return err
	})
}

func (t *sourceTarget) fail(ctx context.Context, id uuid.UUID, msg string) error {
	return t.rt.retryStore(ctx, func(ctx context.Context) error {
		return t.rt.Sources.RecordError(ctx, id, msg)
	})
}

type expertTarget struct {
	rt *Runtime
}

func (t *expertTarget) label() string { return "experts" }

func (t *expertTarget) fetch(ctx context.Context, limit int, cursor *time.Time) ([]item, error) {
	var fetched []experts.ExpertDocument
	err := t.rt.retryStore(ctx, func(ctx context.Context) error {
		var err error
		fetched, err = t.rt.Experts.FetchUnclassified(ctx, limit, cursor)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]item, len(fetched))
	for i, e := range fetched {
		items[i] = item{
			id:        e.ID,
			title:     e.ID.String(),
			ref:       e.Summary,
			createdAt: e.CreatedAt,
		}
	}
	return items, nil
}

func (t *expertTarget) content(_ context.Context, it item) (string, error) {
	return it.ref, nil
}

func (t *expertTarget) update(ctx context.Context, id uuid.UUID, c *Classification) error {
	return t.rt.retryStore(ctx, func(ctx context.Context) error {
		_, err := t.rt.Experts.UpdateClassification(ctx, id, experts.ClassificationUpdate{
			DocumentTypeID: c.DocumentTypeID,
			Confidence:     c.Confidence,
			Status:         experts.StatusProcessed,
		})
		return err
	})
}

func (t *expertTarget) skip(ctx context.Context, id uuid.UUID, reason string) error {
	return t.rt.retryStore(ctx, func(ctx context.Context) error {
		_, err := t.rt.Experts.MarkSkipped(ctx, id, reason)
		return err
	})
}

func (t *expertTarget) fail(ctx context.Context, id uuid.UUID, msg string) error {
	return t.rt.retryStore(ctx, func(ctx context.Context) error {
		return t.rt.Experts.RecordError(ctx, id, msg)
	})
}
