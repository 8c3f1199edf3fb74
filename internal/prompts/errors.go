package prompts

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("prompt not found")
	ErrDuplicate    = errors.New("prompt name already exists")
	ErrInvalidStage = errors.New("stage must be synthesize")
	ErrEmpty        = errors.New("prompt name and instructions are required")
)

// MapHTTPStatus maps prompt errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStage), errors.Is(err, ErrEmpty):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
