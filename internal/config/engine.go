package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/crediscope/internal/scoring"
)

const (
	EnvEngineCollectionDeadline = "CREDISCOPE_ENGINE_COLLECTION_DEADLINE"
	EnvEngineMaxEvidence        = "CREDISCOPE_ENGINE_MAX_EVIDENCE"
	EnvEngineResolvePages       = "CREDISCOPE_ENGINE_RESOLVE_PAGES"
	EnvEngineResolveTimeout     = "CREDISCOPE_ENGINE_RESOLVE_TIMEOUT"
)

// EngineConfig holds the verification engine deadlines and the aggregation policy.
type EngineConfig struct {
	CollectionDeadline string         `toml:"collection_deadline"`
	MaxEvidence        int            `toml:"max_evidence"`
	ResolvePages       bool           `toml:"resolve_pages"`
	ResolveTimeout     string         `toml:"resolve_timeout"`
	Policy             scoring.Policy `toml:"policy"`
}

// CollectionDeadlineDuration returns CollectionDeadline as a time.Duration.
func (c *EngineConfig) CollectionDeadlineDuration() time.Duration {
	d, _ := time.ParseDuration(c.CollectionDeadline)
	return d
}

// ResolveTimeoutDuration returns ResolveTimeout as a time.Duration.
func (c *EngineConfig) ResolveTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ResolveTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EngineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Policy.Finalize(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *EngineConfig) Merge(overlay *EngineConfig) {
	if overlay.CollectionDeadline != "" {
		c.CollectionDeadline = overlay.CollectionDeadline
	}
	if overlay.MaxEvidence != 0 {
		c.MaxEvidence = overlay.MaxEvidence
	}
	if overlay.ResolvePages {
		c.ResolvePages = true
	}
	if overlay.ResolveTimeout != "" {
		c.ResolveTimeout = overlay.ResolveTimeout
	}
	c.Policy.Merge(&overlay.Policy)
}

func (c *EngineConfig) loadDefaults() {
	if c.CollectionDeadline == "" {
		c.CollectionDeadline = "8s"
	}
	if c.MaxEvidence == 0 {
		c.MaxEvidence = 5
	}
	if c.ResolveTimeout == "" {
		c.ResolveTimeout = "3s"
	}
}

func (c *EngineConfig) loadEnv() {
	if v := os.Getenv(EnvEngineCollectionDeadline); v != "" {
		c.CollectionDeadline = v
	}
	if v := os.Getenv(EnvEngineMaxEvidence); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxEvidence = n
		}
	}
	if v := os.Getenv(EnvEngineResolvePages); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.ResolvePages = b
		}
	}
	if v := os.Getenv(EnvEngineResolveTimeout); v != "" {
		c.ResolveTimeout = v
	}
}

func (c *EngineConfig) validate() error {
	if d, err := time.ParseDuration(c.CollectionDeadline); err != nil {
		return fmt.Errorf("invalid collection_deadline: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("collection_deadline must be positive")
	}
	if _, err := time.ParseDuration(c.ResolveTimeout); err != nil {
		return fmt.Errorf("invalid resolve_timeout: %w", err)
	}
	if c.MaxEvidence < 1 {
		return fmt.Errorf("max_evidence must be at least 1")
	}
	return nil
}
