package doctypes

import (
	"errors"
	"net/http"
)

// Domain errors for document type operations.
var (
	ErrNotFound  = errors.New("document type not found")
	ErrDuplicate = errors.New("document type already exists")
	ErrInvalidID = errors.New("document type id must be a non-empty mnemonic")
)

// MapHTTPStatus maps document type domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidID) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
