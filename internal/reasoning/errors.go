package reasoning

import "errors"

var (
	ErrNoChoices     = errors.New("model returned no choices")
	ErrNotConfigured = errors.New("reasoning service not configured")
)
