package experts

import (
	"errors"
	"net/http"
)

// Domain errors for expert document operations.
var (
	ErrNotFound      = errors.New("expert document not found")
	ErrDuplicate     = errors.New("expert document already exists")
	ErrInvalidStatus = errors.New("invalid expert document status")
)

// MapHTTPStatus maps expert document domain errors to appropriate HTTP status codes.
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
