package providers

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// Config holds the connection and quota settings for one provider.
// A provider without an API key is disabled.
type Config struct {
	APIKey   string  `toml:"api_key"`
	Endpoint string  `toml:"endpoint"`
	Timeout  string  `toml:"timeout"`
	Rate     float64 `toml:"rate"`
	Burst    int     `toml:"burst"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	APIKey   string
	Endpoint string
	Timeout  string
	Rate     string
	Burst    string
}

// Enabled reports whether the provider has credentials.
func (c *Config) Enabled() bool {
	return c.APIKey != ""
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Limiter returns a limiter for the configured quota, or nil when unlimited.
func (c *Config) Limiter() *rate.Limiter {
	if c.Rate <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(c.Rate), c.Burst)
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
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Rate != 0 {
		c.Rate = overlay.Rate
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
}

func (c *Config) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "5s"
	}
	if c.Rate > 0 && c.Burst <= 0 {
		c.Burst = 1
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.Endpoint != "" {
		if v := os.Getenv(env.Endpoint); v != "" {
			c.Endpoint = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.Rate != "" {
		if v := os.Getenv(env.Rate); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.Rate = f
			}
		}
	}
	if env.Burst != "" {
		if v := os.Getenv(env.Burst); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Burst = n
			}
		}
	}
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate cannot be negative")
	}
	return nil
}

func clientOptions(cfg Config) []option.ClientOption {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	return opts
}
