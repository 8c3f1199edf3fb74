package infrastructure_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/crediscope/internal/cache"
	"github.com/JaimeStill/crediscope/internal/config"
	"github.com/JaimeStill/crediscope/internal/infrastructure"
	"github.com/JaimeStill/crediscope/pkg/database"
	"github.com/JaimeStill/crediscope/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=crediscope;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/crediscope;"

func minimalConfig() *config.Config {
	return &config.Config{
		Logging: config.LoggingConfig{Level: "info", Format: "json"},
		Cache:   cache.Config{Backend: cache.BackendMemory, TTL: "1h"},
		Version: "0.1.0",
	}
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNewMinimal(t *testing.T) {
	infra, err := infrastructure.NewWithLogger(minimalConfig(), discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.HTTPClient == nil {
		t.Error("HTTPClient is nil")
	}
	if infra.Database != nil {
		t.Error("Database should be nil without a host")
	}
	if infra.Storage != nil {
		t.Error("Storage should be nil without a connection string")
	}
	if infra.DB() != nil {
		t.Error("DB() should be nil without a database")
	}
	if _, ok := infra.Results.(*cache.Memory); !ok {
		t.Errorf("Results = %T, want *cache.Memory", infra.Results)
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := infra.Lifecycle.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestNewWithDatabaseAndStorage(t *testing.T) {
	cfg := minimalConfig()
	cfg.Database = database.Config{
		Host:            "localhost",
		Port:            5432,
		Name:            "crediscope",
		User:            "crediscope",
		Password:        "crediscope",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: "15m",
		ConnTimeout:     "5s",
	}
	cfg.Storage = storage.Config{
		ContainerName:    "verdicts",
		ConnectionString: azuriteConnString,
	}
	cfg.Cache = cache.Config{Backend: cache.BackendBlob, TTL: "1h", Prefix: "results/"}

	infra, err := infrastructure.NewWithLogger(cfg, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Database == nil {
		t.Fatal("Database is nil")
	}
	if infra.DB() == nil {
		t.Error("DB() returned nil")
	}
	if infra.Storage == nil {
		t.Error("Storage is nil")
	}
	if _, ok := infra.Results.(*cache.Blob); !ok {
		t.Errorf("Results = %T, want *cache.Blob", infra.Results)
	}
	infra.DB().Close()
}

func TestNewBadgerCache(t *testing.T) {
	cfg := minimalConfig()
	cfg.Cache = cache.Config{Backend: cache.BackendBadger, TTL: "1h", Path: t.TempDir()}

	infra, err := infrastructure.NewWithLogger(cfg, discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := infra.Results.(*cache.Badger); !ok {
		t.Fatalf("Results = %T, want *cache.Badger", infra.Results)
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := infra.Lifecycle.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestNewBlobCacheRequiresStorage(t *testing.T) {
	cfg := minimalConfig()
	cfg.Cache = cache.Config{Backend: cache.BackendBlob, TTL: "1h"}

	if _, err := infrastructure.NewWithLogger(cfg, discard()); err == nil {
		t.Fatal("expected error for blob cache without storage")
	}
}

func TestNewInvalidStorageConfig(t *testing.T) {
	cfg := minimalConfig()
	cfg.Storage = storage.Config{
		ContainerName:    "verdicts",
		ConnectionString: "not-a-connection-string",
	}

	if _, err := infrastructure.NewWithLogger(cfg, discard()); err == nil {
		t.Fatal("expected error for invalid storage connection string")
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := infrastructure.NewLogger(&config.LoggingConfig{Level: "info", Format: "json"}, &buf)
		logger.Debug("hidden")
		logger.Info("shown", "key", "value")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("output is not a single json line: %v: %s", err, buf.String())
		}
		if entry["msg"] != "shown" || entry["key"] != "value" {
			t.Errorf("entry = %v", entry)
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := infrastructure.NewLogger(&config.LoggingConfig{Level: "debug", Format: "text"}, &buf)
		logger.Debug("visible")

		if !strings.Contains(buf.String(), "msg=visible") {
			t.Errorf("text output = %q", buf.String())
		}
	})
}
