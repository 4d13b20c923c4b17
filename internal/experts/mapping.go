package experts

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/dhg-platform/taxon/pkg/query"
	"github.com/dhg-platform/taxon/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "expert_documents", "e").
	Project("id", "ID").
	Project("source_id", "SourceID").
	Project("summary", "Summary").
	Project("document_type_id", "DocumentTypeID").
	Project("status", "Status").
	Project("last_error", "LastError").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Project("classified_at", "ClassifiedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for expert document queries.
// Nil fields are ignored. Summary uses case-insensitive contains matching.
type Filters struct {
	Status         *string    `json:"status,omitempty"`
	SourceID       *uuid.UUID `json:"source_id,omitempty"`
	DocumentTypeID *string    `json:"document_type_id,omitempty"`
	Summary        *string    `json:"summary,omitempty"`
	Unclassified   bool       `json:"unclassified,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.
		WhereEquals("Status", f.Status).
		WhereEquals("SourceID", f.SourceID).
		WhereEquals("DocumentTypeID", f.DocumentTypeID).
		WhereContains("Summary", f.Summary)

	if f.Unclassified {
		b.WhereNull("DocumentTypeID")
	}

	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if sid := values.Get("source_id"); sid != "" {
		if id, err := uuid.Parse(sid); err == nil {
			f.SourceID = &id
		}
	}

	if dt := values.Get("document_type_id"); dt != "" {
		f.DocumentTypeID = &dt
	}

	if sm := values.Get("summary"); sm != "" {
		f.Summary = &sm
	}

	if values.Get("unclassified") == "true" {
		f.Unclassified = true
	}

	return f
}

func scanExpertDocument(s repository.Scanner) (ExpertDocument, error) {
	var e ExpertDocument
	err := s.Scan(
		&e.ID,
		&e.SourceID,
		&e.Summary,
		&e.DocumentTypeID,
		&e.Status,
		&e.LastError,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.ClassifiedAt,
	)
	return e, err
}
