package workflow

import "errors"

// Pipeline errors. ErrEmptyVocabulary aborts a batch before any document
// is sent to the classifier; the rest are per-document failures that the
// orchestrator records without interrupting the batch.
var (
	ErrEmptyVocabulary = errors.New("document type vocabulary is empty")
	ErrEmptyContent    = errors.New("document content is empty")
	ErrMissingType     = errors.New("classification response missing document type")
	ErrUnknownType     = errors.New("classification response names unknown document type")
)
