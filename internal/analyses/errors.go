package analyses

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/crediscope/internal/claims"
)

// Domain errors for analysis operations.
var (
	ErrNotFound        = errors.New("analysis not found")
	ErrHistoryDisabled = errors.New("analysis history is not configured")
	ErrImageTooLarge   = errors.New("image exceeds upload limit")
	ErrNoImage         = errors.New("no image provided")
)

// MapHTTPStatus maps analysis errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, claims.ErrInputRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNoImage):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrHistoryDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
