package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JaimeStill/crediscope/pkg/storage"
)

type envelope struct {
	ExpiresAt time.Time       `json:"expires_at"`
	Value     json.RawMessage `json:"value"`
}

// Blob is a Store on blob storage. Each entry is one JSON object holding its
// expiry; expired entries read as misses and are overwritten on the next Put.
type Blob struct {
	blobs  storage.System
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewBlob creates a Blob store writing keys under prefix.
func NewBlob(blobs storage.System, prefix string, ttl time.Duration) *Blob {
	return &Blob{blobs: blobs, prefix: prefix, ttl: ttl, now: time.Now}
}

func (b *Blob) key(key string) string {
	return b.prefix + key + ".json"
}

func (b *Blob) Get(ctx context.Context, key string) ([]byte, error) {
	rc, err := b.blobs.Download(ctx, b.key(key))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Join(ErrMiss, err)
	}
	if !b.now().Before(env.ExpiresAt) {
		return nil, ErrMiss
	}
	return env.Value, nil
}

func (b *Blob) Put(ctx context.Context, key string, value []byte) error {
	data, err := json.Marshal(envelope{
		ExpiresAt: b.now().Add(b.ttl).UTC(),
		Value:     value,
	})
	if err != nil {
		return err
	}

	if err := b.blobs.Upload(ctx, b.key(key), bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}
