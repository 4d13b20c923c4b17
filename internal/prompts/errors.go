package prompts

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates no prompt matched the lookup.
	ErrNotFound = errors.New("prompt not found")
	// ErrDuplicate indicates a prompt with the same name already exists.
	ErrDuplicate = errors.New("prompt already exists")
)

// MapHTTPStatus translates prompt domain errors into response status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
