package providers

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	ErrQuotaExceeded = errors.New("provider quota exceeded")
	ErrTransport     = errors.New("provider transport error")
	ErrNotConfigured = errors.New("provider not configured")
)

// Classify maps a call error to an Unavailable reason.
func Classify(ctx context.Context, err error) Reason {
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return ReasonQuotaExceeded
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ReasonTimeout
	case ctx.Err() != nil:
		return ReasonTimeout
	default:
		return ReasonTransportError
	}
}

// apiError wraps Google API errors, marking 429 responses as quota exhaustion.
func apiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return errors.Join(ErrQuotaExceeded, err)
	}
	return errors.Join(ErrTransport, err)
}

// statusError converts a non-2xx HTTP status into a provider error.
func statusError(status int, body string) error {
	if status == http.StatusTooManyRequests {
		return errors.Join(ErrQuotaExceeded, errors.New(body))
	}
	return errors.Join(ErrTransport, errors.New(http.StatusText(status)+": "+body))
}
