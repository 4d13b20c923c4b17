// Package classifier wraps outbound calls to the hosted text-completion
// API used to classify documents. It owns request construction, timeouts,
// retry with exponential backoff on transient failures, and raw response
// capture.
package classifier

import (
	"context"
	"time"
)

// RawResponse carries the full text returned by the model along with
// latency metadata.
type RawResponse struct {
	Content string        `json:"content"`
	Model   string        `json:"model"`
	Latency time.Duration `json:"latency"`
}

// System defines the contract for issuing classification requests.
type System interface {
	// Classify issues a single completion request for the assembled prompt.
	// Transient failures (rate limit, server error, timeout) are retried
	// with exponential backoff; other failures return immediately.
	Classify(ctx context.Context, prompt string) (*RawResponse, error)

	// Model returns the configured model identifier.
	Model() string
}
