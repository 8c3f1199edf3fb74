package reasoning

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the chat completion endpoint used for synthesis.
// An empty APIKey disables synthesis; every analysis then reports it unavailable.
type Config struct {
	BaseURL     string  `toml:"base_url"`
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature string
	MaxTokens   string
	Timeout     string
}

// Enabled reports whether synthesis has credentials.
func (c *Config) Enabled() bool {
	return c.APIKey != ""
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
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
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	}
	if c.Model == "" {
		c.Model = "gemini-2.0-flash"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.2
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 2048
	}
	if c.Timeout == "" {
		c.Timeout = "20s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.Model != "" {
		if v := os.Getenv(env.Model); v != "" {
			c.Model = v
		}
	}
	if env.Temperature != "" {
		if v := os.Getenv(env.Temperature); v != "" {
			if f, err := strconv.ParseFloat(v, 32); err == nil {
				c.Temperature = float32(f)
			}
		}
	}
	if env.MaxTokens != "" {
		if v := os.Getenv(env.MaxTokens); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxTokens = n
			}
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.TimeoutDuration() <= 0 {
		return fmt.Errorf("invalid timeout: %q", c.Timeout)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	return nil
}
