// Package doctypes implements the document type reference domain.
// Document types form the controlled vocabulary that classification
// results are validated against; the workflow only ever reads them.
package doctypes

import "time"

// DocumentType represents one entry in the classification vocabulary.
// ID is a short mnemonic (e.g. PAN for "Presentation Announcement") used
// as the stable identifier in both prompts and stored classifications.
type DocumentType struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateCommand carries the data needed to register a new document type.
type CreateCommand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}
