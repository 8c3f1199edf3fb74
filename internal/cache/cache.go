// Package cache stores analysis results by fingerprint and guarantees at most
// one concurrent computation per key.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// Status reports how a lookup was served.
type Status string

const (
	// StatusHit is a value read from the store.
	StatusHit Status = "hit"
	// StatusMiss is a value computed by this caller.
	StatusMiss Status = "miss"
	// StatusShared is a value computed by a concurrent caller for the same key.
	StatusShared Status = "shared"
	// StatusRefresh is a value recomputed on request, bypassing the read.
	StatusRefresh Status = "refresh"
	// StatusUnavailable is a value computed while the store was failing.
	StatusUnavailable Status = "unavailable"
)

// Store is a byte-oriented key/value backend. Get returns ErrMiss for absent
// or expired keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// ComputeFunc produces the value for a key. It receives a context detached
// from the caller's cancellation and the status the stored value will carry.
type ComputeFunc[V any] func(ctx context.Context, status Status) (V, error)

// Cache is a typed, JSON-encoded view over a Store.
type Cache[V any] struct {
	store  Store
	group  singleflight.Group
	logger *slog.Logger
}

// New creates a Cache over store. A nil store disables caching.
func New[V any](store Store, logger *slog.Logger) *Cache[V] {
	if store == nil {
		store = Nop{}
	}
	return &Cache[V]{
		store:  store,
		logger: logger.With("system", "cache"),
	}
}

type flight[V any] struct {
	value  V
	status Status
}

// Do returns the value for key. A stored value is returned unless refresh is
// set; otherwise fn computes it and the result replaces the stored entry.
// Concurrent calls for the same key share one computation, refresh or not.
// A caller whose ctx ends stops waiting; the computation continues and is
// still stored.
func (c *Cache[V]) Do(ctx context.Context, key string, refresh bool, fn ComputeFunc[V]) (V, Status, error) {
	var zero V
	storeDown := false

	if !refresh {
		v, err := c.read(ctx, key)
		switch {
		case err == nil:
			lookups.WithLabelValues(string(StatusHit)).Inc()
			return v, StatusHit, nil
		case !errors.Is(err, ErrMiss):
			c.logger.Warn("cache read failed", "key", key, "error", err)
			storeDown = true
		}
	}

	initiated := false
	ch := c.group.DoChan(key, func() (any, error) {
		initiated = true
		detached := context.WithoutCancel(ctx)

		if !refresh && !storeDown {
			if v, err := c.read(detached, key); err == nil {
				return flight[V]{value: v, status: StatusHit}, nil
			}
		}

		status := StatusMiss
		switch {
		case storeDown:
			status = StatusUnavailable
		case refresh:
			status = StatusRefresh
		}

		v, err := fn(detached, status)
		if err != nil {
			return nil, err
		}

		if err := c.write(detached, key, v); err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
			status = StatusUnavailable
		}

		return flight[V]{value: v, status: status}, nil
	})

	select {
	case <-ctx.Done():
		return zero, "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, "", res.Err
		}

		f := res.Val.(flight[V])
		status := f.status
		if !initiated && status != StatusHit {
			status = StatusShared
		}

		lookups.WithLabelValues(string(status)).Inc()
		return f.value, status, nil
	}
}

func (c *Cache[V]) read(ctx context.Context, key string) (V, error) {
	var v V
	data, err := c.store.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrMiss, err)
	}
	return v, nil
}

func (c *Cache[V]) write(ctx context.Context, key string, v V) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.store.Put(ctx, key, data)
}

// Nop is a Store that never holds anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (Nop) Put(context.Context, string, []byte) error { return nil }
