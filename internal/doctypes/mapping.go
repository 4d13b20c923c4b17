package doctypes

import (
	"net/url"

	"github.com/dhg-platform/taxon/pkg/query"
	"github.com/dhg-platform/taxon/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "document_types", "t").
	Project("id", "ID").
	Project("name", "Name").
	Project("category", "Category").
	Project("description", "Description").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field: "ID",
}

// Filters contains optional filtering criteria for document type queries.
// Nil fields are ignored. Category uses exact matching; Name uses
// case-insensitive contains matching.
type Filters struct {
	Category *string `json:"category,omitempty"`
	Name     *string `json:"name,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Category", f.Category).
		WhereContains("Name", f.Name)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("category"); c != "" {
		f.Category = &c
	}

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	return f
}

func scanDocumentType(s repository.Scanner) (DocumentType, error) {
	var t DocumentType
	err := s.Scan(
		&t.ID,
		&t.Name,
		&t.Category,
		&t.Description,
		&t.CreatedAt,
	)
	return t, err
}
