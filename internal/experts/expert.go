// Package experts implements the expert document domain for Taxon.
// An expert document is a derived record holding AI-extracted summary
// content for a source, carrying its own document type classification
// and status lifecycle, updated independently of the source it derives
// from.
package experts

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Processing statuses for an expert document. Mirrors the source
// lifecycle: status only ever advances.
const (
	StatusUnprocessed         = "unprocessed"
	StatusNeedsClassification = "needs_classification"
	StatusProcessed           = "processed"
	StatusSkipped             = "skipped"
)

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

// StatusAdvances reports whether an update carrying next may move an expert
// document currently at current forward. Equal or lower ranks leave the
// stored status untouched, which keeps repeated classification updates
// idempotent and the terminal statuses mutually non-overwriting.
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

// ExpertDocument represents a derived summary record for a source.
// DocumentTypeID is classified independently of the parent source.
type ExpertDocument struct {
	ID             uuid.UUID  `json:"id"`
	SourceID       uuid.UUID  `json:"source_id"`
	Summary        string     `json:"summary"`
	DocumentTypeID *string    `json:"document_type_id"`
	Status         string     `json:"status"`
	LastError      *string    `json:"last_error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ClassifiedAt   *time.Time `json:"classified_at,omitempty"`
}

// CreateCommand carries the data needed to register a new expert document.
type CreateCommand struct {
	SourceID uuid.UUID `json:"source_id"`
	Summary  string    `json:"summary"`
}

// ClassificationUpdate carries the outcome of a classification pass for a
// single expert document.
type ClassificationUpdate struct {
	DocumentTypeID string  `json:"document_type_id"`
	Confidence     float64 `json:"confidence"`
	Status         string  `json:"status"`
}
