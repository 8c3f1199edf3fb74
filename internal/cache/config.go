package cache

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/JaimeStill/crediscope/pkg/storage"
)

// Backend names a Store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendBadger Backend = "badger"
	BackendBlob   Backend = "blob"
	BackendNone   Backend = "none"
)

var backends = []Backend{BackendMemory, BackendBadger, BackendBlob, BackendNone}

// Config selects and tunes the result store.
type Config struct {
	Backend    Backend `toml:"backend"`
	TTL        string  `toml:"ttl"`
	Path       string  `toml:"path"`
	Prefix     string  `toml:"prefix"`
	MaxEntries int     `toml:"max_entries"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend    string
	TTL        string
	Path       string
	Prefix     string
	MaxEntries string
}

// TTLDuration returns TTL as a time.Duration.
func (c *Config) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.MaxEntries != 0 {
		c.MaxEntries = overlay.MaxEntries
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.TTL == "" {
		c.TTL = "24h"
	}
	if c.Prefix == "" {
		c.Prefix = "results/"
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = 10000
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Backend != "" {
		if v := os.Getenv(env.Backend); v != "" {
			c.Backend = Backend(v)
		}
	}
	if env.TTL != "" {
		if v := os.Getenv(env.TTL); v != "" {
			c.TTL = v
		}
	}
	if env.Path != "" {
		if v := os.Getenv(env.Path); v != "" {
			c.Path = v
		}
	}
	if env.Prefix != "" {
		if v := os.Getenv(env.Prefix); v != "" {
			c.Prefix = v
		}
	}
	if env.MaxEntries != "" {
		if v := os.Getenv(env.MaxEntries); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxEntries = n
			}
		}
	}
}

func (c *Config) validate() error {
	if !slices.Contains(backends, c.Backend) {
		return fmt.Errorf("unknown cache backend %q", c.Backend)
	}
	if c.TTLDuration() <= 0 {
		return fmt.Errorf("invalid ttl: %q", c.TTL)
	}
	return nil
}

// Open creates the configured Store. blobs is required only for the blob backend.
func Open(cfg *Config, blobs storage.System, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendNone:
		return Nop{}, nil
	case BackendBadger:
		return OpenBadger(cfg.Path, cfg.TTLDuration(), logger)
	case BackendBlob:
		if blobs == nil {
			return nil, fmt.Errorf("cache backend %q requires storage", cfg.Backend)
		}
		return NewBlob(blobs, cfg.Prefix, cfg.TTLDuration()), nil
	default:
		return NewMemory(cfg.TTLDuration(), cfg.MaxEntries), nil
	}
}
