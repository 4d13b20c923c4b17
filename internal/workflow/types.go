package workflow

import (
	"time"

	"github.com/google/uuid"
)

// State tracks a document's progress through a pipeline run.
type State string

// Per-document pipeline states. Every document in a batch ends in exactly
// one of Classified, Failed, or Skipped.
const (
	StatePending     State = "pending"
	StateClassifying State = "classifying"
	StateClassified  State = "classified"
	StateFailed      State = "failed"
	StateSkipped     State = "skipped"
)

// Outcome reports the terminal state of a single document within a run.
type Outcome struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	State          State     `json:"state"`
	DocumentTypeID string    `json:"document_type_id,omitempty"`
	Confidence     float64   `json:"confidence,omitempty"`
	Unconfident    bool      `json:"unconfident,omitempty"`
	Reason         string    `json:"reason,omitempty"`
}

// RunSummary aggregates the outcomes of a pipeline run.
type RunSummary struct {
	Total      int       `json:"total"`
	Classified int       `json:"classified"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Outcomes   []Outcome `json:"outcomes"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// HasFailures reports whether any document in the run ended in Failed.
func (s *RunSummary) HasFailures() bool {
	return s.Failed > 0
}

func (s *RunSummary) tally() {
	s.Total = len(s.Outcomes)
	s.Classified, s.Failed, s.Skipped = 0, 0, 0

	for _, o := range s.Outcomes {
		switch o.State {
		case StateClassified:
			s.Classified++
		case StateFailed:
			s.Failed++
		case StateSkipped:
			s.Skipped++
		}
	}
}

// Options controls a pipeline run.
type Options struct {
	// Limit bounds how many documents the run will attempt.
	Limit int

	// PromptName selects the prompt template; empty uses the runtime default.
	PromptName string
}
