// Package sources implements the source document domain for Taxon.
// It provides types, data access, and business logic for tracking
// ingested documents, their blob storage references, and their
// classification status as they move through the pipeline.
package sources

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Processing statuses for a source document. Status only ever advances:
// once a source reaches a later status it never returns to an earlier one.
const (
	StatusUnprocessed         = "unprocessed"
	StatusNeedsClassification = "needs_classification"
	StatusProcessed           = "processed"
	StatusSkipped             = "skipped"
)

// statusRank orders statuses for monotonic advancement checks.
// Skipped and processed are both terminal.
var statusRank = map[string]int{
	StatusUnprocessed:         0,
	StatusNeedsClassification: 1,
	StatusProcessed:           2,
	StatusSkipped:             2,
}

// ValidStatus reports whether s is a recognized processing status.
func ValidStatus(s string) bool {
	_, ok := statusRank[s]
	return ok
}

// StatusAdvances reports whether an update carrying next may move a source
// currently at current forward. Equal or lower ranks leave the stored
// status untouched, which keeps repeated classification updates idempotent
// and the terminal statuses mutually non-overwriting.
func StatusAdvances(current, next string) bool {
	return statusRank[next] > statusRank[current]
}

// statusRankSQL renders statusRank as a SQL CASE expression over column,
// so the update guard in the repository expresses the same ordering as
// StatusAdvances. Unknown values rank terminal and are never overwritten.
func statusRankSQL(column string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CASE %s", column)
	for _, s := range []string{StatusUnprocessed, StatusNeedsClassification, StatusProcessed, StatusSkipped} {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", s, statusRank[s])
	}
	fmt.Fprintf(&b, " ELSE %d END", statusRank[StatusProcessed])
	return b.String()
}

// Source represents an ingested document with its blob storage reference
// and classification state. DocumentTypeID is nil until the source has been
// classified. LastError carries the most recent processing failure without
// affecting the status.
type Source struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	StorageKey     string     `json:"storage_key"`
	MimeType       string     `json:"mime_type"`
	DocumentTypeID *string    `json:"document_type_id"`
	Status         string     `json:"status"`
	LastError      *string    `json:"last_error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ClassifiedAt   *time.Time `json:"classified_at,omitempty"`
}

// CreateCommand carries the data needed to ingest and register a new source.
// Data holds the raw file bytes.
type CreateCommand struct {
	Data     []byte
	Title    string
	MimeType string
}

// ClassificationUpdate carries the outcome of a classification pass for a
// single source. Status must be one of the processing statuses.
type ClassificationUpdate struct {
	DocumentTypeID string  `json:"document_type_id"`
	Confidence     float64 `json:"confidence"`
	Status         string  `json:"status"`
}
