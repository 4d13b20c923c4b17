package classifier

import (
	"context"
	"errors"
)

// Client errors for classification requests. Rate limits, timeouts, and
// server errors are transient and retried; request errors are not.
var (
	ErrRateLimited = errors.New("classifier rate limited")
	ErrTimeout     = errors.New("classifier request timed out")
	ErrServer      = errors.New("classifier server error")
	ErrRequest     = errors.New("classifier rejected request")
)

// Retryable reports whether err represents a transient failure worth
// retrying with backoff.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrServer) ||
		errors.Is(err, context.DeadlineExceeded)
}
