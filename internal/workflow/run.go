package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"
)

// RunSources classifies a batch of unclassified source documents.
func RunSources(ctx context.Context, rt *Runtime, opts Options) (*RunSummary, error) {
	return run(ctx, rt, &sourceTarget{rt}, opts)
}

// RunExperts classifies a batch of unclassified expert documents.
func RunExperts(ctx context.Context, rt *Runtime, opts Options) (*RunSummary, error) {
	return run(ctx, rt, &expertTarget{rt}, opts)
}

// ClassifySource classifies a single source by ID, regardless of its
// current classification state. Explicit invocation counts as a re-queue.
func ClassifySource(ctx context.Context, rt *Runtime, id uuid.UUID, opts Options) (*Outcome, error) {
	pc, err := resolvePrompt(ctx, rt, opts.PromptName)
	if err != nil {
		return nil, err
	}

	if len(pc.vocabulary) == 0 {
		rt.Logger.Warn("refusing to classify against empty vocabulary", "prompt", pc.name)
		return nil, ErrEmptyVocabulary
	}

	src, err := rt.Sources.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	outcome := classifyOne(ctx, rt, &sourceTarget{rt}, pc, item{
		id:        src.ID,
		title:     src.Title,
		ref:       src.StorageKey,
		createdAt: src.CreatedAt,
	})
	return &outcome, nil
}

// run drives the pipeline for a batch: resolve the prompt and vocabulary
// once, fetch unclassified documents with cursor pagination, and classify
// them under bounded concurrency. Failures are isolated per document.
func run(ctx context.Context, rt *Runtime, t target, opts Options) (*RunSummary, error) {
	summary := &RunSummary{StartedAt: time.Now()}

	pc, err := resolvePrompt(ctx, rt, opts.PromptName)
	if err != nil {
		return nil, err
	}

	if len(pc.vocabulary) == 0 {
		rt.Logger.Warn("aborting batch: empty vocabulary", "prompt", pc.name, "target", t.label())
		return nil, ErrEmptyVocabulary
	}

	items, err := fetchBatch(ctx, rt, t, opts.Limit)
	if err != nil {
		return nil, err
	}

	rt.Logger.Info("batch started",
		"target", t.label(),
		"prompt", pc.name,
		"count", len(items),
		"concurrency", rt.concurrency(),
	)

	outcomes := make([]Outcome, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.concurrency())

	for i := range items {
		g.Go(func() error {
			outcomes[i] = classifyOne(gctx, rt, t, pc, items[i])
			return nil
		})
	}

	// Workers never return errors; failures live in their outcomes.
	_ = g.Wait()

	// Aborted documents stay Pending in the store for the next run.
	for _, o := range outcomes {
		if o.State != StatePending {
			summary.Outcomes = append(summary.Outcomes, o)
		}
	}

	summary.tally()
	summary.FinishedAt = time.Now()

	rt.Logger.Info("batch finished",
		"target", t.label(),
		"classified", summary.Classified,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

// fetchBatch accumulates up to limit items through repeated cursor-bounded
// fetches, so a single run never re-fetches rows it has already seen.
func fetchBatch(ctx context.Context, rt *Runtime, t target, limit int) ([]item, error) {
	if limit < 1 {
		limit = rt.fetchBatchSize()
	}

	var items []item
	var cursor *time.Time

	for len(items) < limit {
		size := min(rt.fetchBatchSize(), limit-len(items))

		fetched, err := t.fetch(ctx, size, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch unclassified %s: %w", t.label(), err)
		}
		if len(fetched) == 0 {
			break
		}

		items = append(items, fetched...)
		last := fetched[len(fetched)-1].createdAt
		cursor = &last

		if len(fetched) < size {
			break
		}
	}

	return items, nil
}

// classifyOne runs the full pipeline for a single document and returns its
// terminal outcome. It never panics the batch: every genuine error path
// records the failure against the document and reports it in the outcome,
// while a run abort leaves the document Pending.
func classifyOne(ctx context.Context, rt *Runtime, t target, pc *promptContext, it item) Outcome {
	outcome := Outcome{ID: it.id, Title: it.title, State: StateClassifying}

	if ctx.Err() != nil {
		outcome.State = StatePending
		outcome.Reason = "run aborted"
		return outcome
	}

	content, err := t.content(ctx, it)
	if err != nil {
		return failed(ctx, rt, t, outcome, fmt.Errorf("load content: %w", err))
	}

	if strings.TrimSpace(content) == "" {
		return skipped(ctx, rt, t, outcome, ErrEmptyContent.Error())
	}

	prompt, _ := BuildPrompt(pc.template, pc.vocabulary, content, rt.MaxContentLength)

	if err := rt.wait(ctx); err != nil {
		outcome.State = StatePending
		outcome.Reason = "run aborted"
		return outcome
	}

	raw, err := rt.Classifier.Classify(ctx, prompt)
	if err != nil {
		return failed(ctx, rt, t, outcome, fmt.Errorf("classify: %w", err))
	}

	result, err := ParseClassification(raw.Content, pc.vocabulary)
	if err != nil {
		return failed(ctx, rt, t, outcome, fmt.Errorf("parse response: %w", err))
	}

	if err := t.update(ctx, it.id, result); err != nil {
		return failed(ctx, rt, t, outcome, fmt.Errorf("persist classification: %w", err))
	}

	outcome.State = StateClassified
	outcome.DocumentTypeID = result.DocumentTypeID
	outcome.Confidence = result.Confidence
	outcome.Unconfident = result.Unconfident

	rt.Logger.Info("document classified",
		"target", t.label(),
		"id", it.id,
		"document_type_id", result.DocumentTypeID,
		"confidence", result.Confidence,
	)
	return outcome
}

// failed records err against the document, unless the run itself was
// aborted while the document was in flight. Abort is not a document
// failure: the document stays Pending in the store for the next run,
// and no error is recorded against it.
func failed(ctx context.Context, rt *Runtime, t target, outcome Outcome, err error) Outcome {
	if ctx.Err() != nil {
		outcome.State = StatePending
		outcome.Reason = "run aborted"
		return outcome
	}

	outcome.State = StateFailed
	outcome.Reason = err.Error()

	if recErr := t.fail(ctx, outcome.ID, err.Error()); recErr != nil {
		rt.Logger.Warn("failed to record document error",
			"target", t.label(),
			"id", outcome.ID,
			"error", recErr,
		)
	}

	rt.Logger.Warn("document failed",
		"target", t.label(),
		"id", outcome.ID,
		"error", err,
	)
	return outcome
}

func skipped(ctx context.Context, rt *Runtime, t target, outcome Outcome, reason string) Outcome {
	outcome.State = StateSkipped
	outcome.Reason = reason

	if err := t.skip(ctx, outcome.ID, reason); err != nil {
		rt.Logger.Warn("failed to mark document skipped",
			"target", t.label(),
			"id", outcome.ID,
			"error", err,
		)
	}

	rt.Logger.Info("document skipped",
		"target", t.label(),
		"id", outcome.ID,
		"reason", reason,
	)
	return outcome
}
