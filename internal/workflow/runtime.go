// Package workflow implements the classification pipeline for Taxon.
// It coordinates fetching unclassified documents, resolving the prompt
// template and document type vocabulary, invoking the classifier, parsing
// its response, and reconciling results back into the store. Documents
// are processed independently: one document's failure never aborts the
// rest of the batch.
package workflow

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/dhg-platform/taxon/internal/classifier"
	"github.com/dhg-platform/taxon/internal/doctypes"
	"github.com/dhg-platform/taxon/internal/experts"
	"github.com/dhg-platform/taxon/internal/prompts"
	"github.com/dhg-platform/taxon/internal/sources"
	"github.com/dhg-platform/taxon/pkg/repository"
	"github.com/dhg-platform/taxon/pkg/retry"
	"github.com/dhg-platform/taxon/pkg/storage"
)

// Runtime bundles the dependencies the pipeline requires. It is constructed
// by higher-level composition code from Infrastructure and Domain systems.
type Runtime struct {
	Sources    sources.System
	Experts    experts.System
	DocTypes   doctypes.System
	Prompts    prompts.System
	Classifier classifier.System
	Storage    storage.System
	Logger     *slog.Logger

	// Limiter gates outbound classification calls across all workers.
	Limiter *rate.Limiter

	// Concurrency bounds the number of in-flight classification requests.
	Concurrency int

	// MaxContentLength truncates document content before prompt assembly.
	MaxContentLength int

	// FetchBatchSize bounds each store fetch within a run; larger limits
	// are satisfied by repeated fetches with a creation-time cursor.
	FetchBatchSize int

	// DefaultPrompt names the prompt template used when the caller does
	// not specify one.
	DefaultPrompt string

	// StoreRetry bounds backoff for store calls that fail because the
	// store is unreachable. Zero means the default policy.
	StoreRetry retry.Policy
}

func (rt *Runtime) concurrency() int {
	if rt.Concurrency < 1 {
		return 1
	}
	return rt.Concurrency
}

func (rt *Runtime) fetchBatchSize() int {
	if rt.FetchBatchSize < 1 {
		return 50
	}
	return rt.FetchBatchSize
}

func (rt *Runtime) wait(ctx context.Context) error {
	if rt.Limiter == nil {
		return nil
	}
	return rt.Limiter.Wait(ctx)
}

func (rt *Runtime) storeRetryPolicy() retry.Policy {
	if rt.StoreRetry.MaxAttempts > 0 {
		return rt.StoreRetry
	}
	return retry.DefaultPolicy()
}

// retryStore wraps a store call with bounded backoff while the store is
// unreachable. Data-shaped errors such as not-found surface immediately.
func (rt *Runtime) retryStore(ctx context.Context, fn func(context.Context) error) error {
	return retry.Do(ctx, rt.storeRetryPolicy(), repository.IsUnavailable, fn)
}
