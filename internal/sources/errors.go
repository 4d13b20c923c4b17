package sources

import (
	"errors"
	"net/http"
)

// Domain errors for source operations.
var (
	ErrNotFound      = errors.New("source not found")
	ErrDuplicate     = errors.New("source already exists")
	ErrInvalidStatus = errors.New("invalid source status")
)

// MapHTTPStatus maps source domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidStatus) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
