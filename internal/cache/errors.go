package cache

import "errors"

var (
	// ErrMiss indicates the key is absent or expired.
	ErrMiss = errors.New("cache miss")
	// ErrUnavailable indicates the backing store failed.
	ErrUnavailable = errors.New("cache unavailable")
)
