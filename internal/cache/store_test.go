package cache_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/crediscope/internal/cache"
	"github.com/JaimeStill/crediscope/pkg/lifecycle"
	"github.com/JaimeStill/crediscope/pkg/storage"
)

type memoryBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
	err   error
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{blobs: map[string][]byte{}}
}

func (m *memoryBlobs) Start(*lifecycle.Coordinator) error { return nil }

func (m *memoryBlobs) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return nil
}

func (m *memoryBlobs) Download(_ context.Context, key string) (io.ReadCloser, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *memoryBlobs) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok, nil
}

func openBadger(t *testing.T) cache.Store {
	t.Helper()
	b, err := cache.OpenBadger("", time.Hour, discard())
	if err != nil {
		t.Fatalf("OpenBadger error: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) cache.Store{
		"memory": func(*testing.T) cache.Store { return cache.NewMemory(time.Hour, 0) },
		"badger": openBadger,
		"blob":   func(*testing.T) cache.Store { return cache.NewBlob(newMemoryBlobs(), "results/", time.Hour) },
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			if _, err := s.Get(ctx, "absent"); !errors.Is(err, cache.ErrMiss) {
				t.Errorf("Get(absent) error = %v, want ErrMiss", err)
			}

			value := []byte(`{"label":"LIKELY_FALSE","confidence":83}`)
			if err := s.Put(ctx, "fp", value); err != nil {
				t.Fatalf("Put error: %v", err)
			}

			got, err := s.Get(ctx, "fp")
			if err != nil {
				t.Fatalf("Get error: %v", err)
			}
			if !bytes.Equal(got, value) {
				t.Errorf("Get = %s, want %s", got, value)
			}

			replacement := []byte(`{"label":"MISLEADING","confidence":50}`)
			s.Put(ctx, "fp", replacement)
			got, _ = s.Get(ctx, "fp")
			if !bytes.Equal(got, replacement) {
				t.Errorf("Get after replace = %s, want %s", got, replacement)
			}
		})
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := cache.NewMemory(20*time.Millisecond, 0)
	ctx := context.Background()

	m.Put(ctx, "fp", []byte(`{}`))
	time.Sleep(40 * time.Millisecond)

	if _, err := m.Get(ctx, "fp"); !errors.Is(err, cache.ErrMiss) {
		t.Errorf("Get(expired) error = %v, want ErrMiss", err)
	}
}

func TestMemoryBound(t *testing.T) {
	m := cache.NewMemory(time.Hour, 2)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		m.Put(ctx, k, []byte(k))
		time.Sleep(time.Millisecond)
	}

	if n := m.Len(); n != 2 {
		t.Errorf("Len = %d, want 2", n)
	}
	if _, err := m.Get(ctx, "a"); !errors.Is(err, cache.ErrMiss) {
		t.Errorf("oldest entry not evicted: %v", err)
	}
	if _, err := m.Get(ctx, "c"); err != nil {
		t.Errorf("newest entry missing: %v", err)
	}
}

func TestBlobUnavailable(t *testing.T) {
	blobs := newMemoryBlobs()
	blobs.err = errors.New("azurite down")
	b := cache.NewBlob(blobs, "results/", time.Hour)

	if _, err := b.Get(context.Background(), "fp"); !errors.Is(err, cache.ErrUnavailable) {
		t.Errorf("Get error = %v, want ErrUnavailable", err)
	}
	if err := b.Put(context.Background(), "fp", []byte(`{}`)); !errors.Is(err, cache.ErrUnavailable) {
		t.Errorf("Put error = %v, want ErrUnavailable", err)
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_CACHE_BACKEND", "badger")

	cfg := &cache.Config{}
	if err := cfg.Finalize(&cache.Env{Backend: "TEST_CACHE_BACKEND"}); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if cfg.Backend != cache.BackendBadger {
		t.Errorf("Backend = %s, want badger", cfg.Backend)
	}
	if cfg.TTLDuration() != 24*time.Hour {
		t.Errorf("TTL = %v, want 24h", cfg.TTLDuration())
	}

	bad := &cache.Config{Backend: "redis"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("Finalize accepted unknown backend")
	}

	if _, err := cache.Open(&cache.Config{Backend: cache.BackendBlob, TTL: "1h"}, nil, discard()); err == nil {
		t.Error("Open(blob) without storage succeeded")
	}
}
