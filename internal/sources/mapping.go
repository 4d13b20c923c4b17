package sources

import (
	"net/url"

	"github.com/dhg-platform/taxon/pkg/query"
	"github.com/dhg-platform/taxon/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "sources", "s").
	Project("id", "ID").
	Project("title", "Title").
	Project("storage_key", "StorageKey").
	Project("mime_type", "MimeType").
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

// Filters contains optional filtering criteria for source queries.
// Nil fields are ignored. Status, MimeType, and DocumentTypeID use exact
// matching. Title and StorageKey use case-insensitive contains matching.
// Unclassified restricts results to sources with no document type assigned.
type Filters struct {
	Status         *string `json:"status,omitempty"`
	Title          *string `json:"title,omitempty"`
	MimeType       *string `json:"mime_type,omitempty"`
	StorageKey     *string `json:"storage_key,omitempty"`
	DocumentTypeID *string `json:"document_type_id,omitempty"`
	Unclassified   bool    `json:"unclassified,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.
		WhereEquals("Status", f.Status).
		WhereContains("Title", f.Title).
		WhereEquals("MimeType", f.MimeType).
		WhereContains("StorageKey", f.StorageKey).
		WhereEquals("DocumentTypeID", f.DocumentTypeID)

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

	if t := values.Get("title"); t != "" {
		f.Title = &t
	}

	if mt := values.Get("mime_type"); mt != "" {
		f.MimeType = &mt
	}

	if sk := values.Get("storage_key"); sk != "" {
		f.StorageKey = &sk
	}

	if dt := values.Get("document_type_id"); dt != "" {
		f.DocumentTypeID = &dt
	}

	if values.Get("unclassified") == "true" {
		f.Unclassified = true
	}

	return f
}

func scanSource(s repository.Scanner) (Source, error) {
	var src Source
	err := s.Scan(
		&src.ID,
		&src.Title,
		&src.StorageKey,
		&src.MimeType,
		&src.DocumentTypeID,
		&src.Status,
		&src.LastError,
		&src.CreatedAt,
		&src.UpdatedAt,
		&src.ClassifiedAt,
	)
	return src, err
}
