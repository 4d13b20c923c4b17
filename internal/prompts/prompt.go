// Package prompts implements the prompt template domain for Taxon.
// It provides types, data access, and HTTP handlers for managing
// named classification prompt templates and their relationships to
// document type categories.
package prompts

import (
	"time"

	"github.com/google/uuid"
)

// Prompt represents a named classification instruction template.
// Categories lists the document type categories linked to the prompt
// through relationship rows; an empty list means the prompt draws on
// the full document type vocabulary.
type Prompt struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Template    string    `json:"template"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Categories  []string  `json:"categories,omitempty"`
}

// CreateCommand carries the data needed to create a new prompt template.
type CreateCommand struct {
	Name        string   `json:"name"`
	Template    string   `json:"template"`
	Description *string  `json:"description"`
	Categories  []string `json:"categories,omitempty"`
}

// UpdateCommand carries the data needed to update an existing prompt template.
type UpdateCommand struct {
	Name        string   `json:"name"`
	Template    string   `json:"template"`
	Description *string  `json:"description"`
	Categories  []string `json:"categories,omitempty"`
}
