package workflow

import (
	"fmt"
	"strings"

	"github.com/dhg-platform/taxon/internal/doctypes"
	"github.com/dhg-platform/taxon/pkg/formatting"
)

type classificationResponse struct {
	DocumentTypeID   string   `json:"document_type_id"`
	DocumentTypeName string   `json:"document_type_name,omitempty"`
	Confidence       *float64 `json:"confidence,omitempty"`
}

// Classification is the validated result extracted from a classifier
// response. Unconfident marks results where the model omitted a confidence
// score; the documented sentinel 0.0 is recorded in that case.
type Classification struct {
	DocumentTypeID   string  `json:"document_type_id"`
	DocumentTypeName string  `json:"document_type_name"`
	Confidence       float64 `json:"confidence"`
	Unconfident      bool    `json:"unconfident,omitempty"`
}

// ParseClassification extracts a structured classification from raw model
// output and cross-checks the chosen type against the vocabulary. A type
// the model invented is rejected with ErrUnknownType carrying the raw guess
// for human review, never silently accepted. Confidence is clamped to
// [0,1]; an absent confidence defaults to 0.0 and flags the result as
// unconfident rather than failing.
func ParseClassification(raw string, vocabulary []doctypes.DocumentType) (*Classification, error) {
	resp, err := formatting.Parse[classificationResponse](raw)
	if err != nil {
		return nil, err
	}

	matched, err := matchType(resp, vocabulary)
	if err != nil {
		return nil, err
	}

	result := &Classification{
		DocumentTypeID:   matched.ID,
		DocumentTypeName: matched.Name,
	}

	if resp.Confidence == nil {
		result.Unconfident = true
	} else {
		result.Confidence = clamp(*resp.Confidence)
	}

	return result, nil
}

// matchType resolves the model's stated type against the vocabulary,
// by mnemonic first, then by display name.
func matchType(resp classificationResponse, vocabulary []doctypes.DocumentType) (*doctypes.DocumentType, error) {
	if resp.DocumentTypeID == "" && resp.DocumentTypeName == "" {
		return nil, ErrMissingType
	}

	for i, t := range vocabulary {
		if strings.EqualFold(resp.DocumentTypeID, t.ID) {
			return &vocabulary[i], nil
		}
	}

	if resp.DocumentTypeName != "" {
		for i, t := range vocabulary {
			if strings.EqualFold(resp.DocumentTypeName, t.Name) {
				return &vocabulary[i], nil
			}
		}
	}

	guess := resp.DocumentTypeID
	if guess == "" {
		guess = resp.DocumentTypeName
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, guess)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
