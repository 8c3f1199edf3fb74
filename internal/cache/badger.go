package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/JaimeStill/crediscope/pkg/lifecycle"
)

const gcInterval = 5 * time.Minute

// Badger is a Store on an embedded BadgerDB. Expiry uses Badger's native TTL.
type Badger struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// OpenBadger opens a database at path, or in memory when path is empty.
func OpenBadger(path string, ttl time.Duration, logger *slog.Logger) (*Badger, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}

	logger = logger.With("system", "cache", "store", "badger")
	opts = opts.WithNumVersionsToKeep(1).WithLogger(&badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	return &Badger{db: db, ttl: ttl, logger: logger}, nil
}

func (b *Badger) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, ErrMiss
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return value, nil
}

func (b *Badger) Put(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), value).WithTTL(b.ttl))
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// Close closes the database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// Start runs value log garbage collection until shutdown, then closes the database.
func (b *Badger) Start(lc *lifecycle.Coordinator) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.collect(lc.Context())
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-done
		if err := b.Close(); err != nil {
			b.logger.Error("cache close failed", "error", err)
			return
		}
		b.logger.Info("cache closed")
	})

	return nil
}

func (b *Badger) collect(ctx context.Context) {
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for b.db.RunValueLogGC(0.5) == nil {
			}
		}
	}
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
