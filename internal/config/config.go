package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/crediscope/internal/cache"
	"github.com/JaimeStill/crediscope/internal/reasoning"
	"github.com/JaimeStill/crediscope/pkg/database"
	"github.com/JaimeStill/crediscope/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCrediscopeEnv             = "CREDISCOPE_ENV"
	EnvCrediscopeShutdownTimeout = "CREDISCOPE_SHUTDOWN_TIMEOUT"
	EnvCrediscopeVersion         = "CREDISCOPE_VERSION"
	EnvGoogleAPIKey              = "CREDISCOPE_GOOGLE_API_KEY"
)

var databaseEnv = &database.Env{
	Host:            "CREDISCOPE_DB_HOST",
	Port:            "CREDISCOPE_DB_PORT",
	Name:            "CREDISCOPE_DB_NAME",
	User:            "CREDISCOPE_DB_USER",
	Password:        "CREDISCOPE_DB_PASSWORD",
	SSLMode:         "CREDISCOPE_DB_SSL_MODE",
	MaxOpenConns:    "CREDISCOPE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CREDISCOPE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CREDISCOPE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CREDISCOPE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "CREDISCOPE_STORAGE_CONTAINER_NAME",
	ConnectionString: "CREDISCOPE_STORAGE_CONNECTION_STRING",
}

var reasoningEnv = &reasoning.Env{
	BaseURL:     "CREDISCOPE_REASONING_BASE_URL",
	APIKey:      "CREDISCOPE_REASONING_API_KEY",
	Model:       "CREDISCOPE_REASONING_MODEL",
	Temperature: "CREDISCOPE_REASONING_TEMPERATURE",
	MaxTokens:   "CREDISCOPE_REASONING_MAX_TOKENS",
	Timeout:     "CREDISCOPE_REASONING_TIMEOUT",
}

var cacheEnv = &cache.Env{
	Backend:    "CREDISCOPE_CACHE_BACKEND",
	TTL:        "CREDISCOPE_CACHE_TTL",
	Path:       "CREDISCOPE_CACHE_PATH",
	Prefix:     "CREDISCOPE_CACHE_PREFIX",
	MaxEntries: "CREDISCOPE_CACHE_MAX_ENTRIES",
}

// Config is the root configuration for the Crediscope service and CLI.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Logging         LoggingConfig    `toml:"logging"`
	Database        database.Config  `toml:"database"`
	Storage         storage.Config   `toml:"storage"`
	API             APIConfig        `toml:"api"`
	Engine          EngineConfig     `toml:"engine"`
	Providers       ProvidersConfig  `toml:"providers"`
	Reasoning       reasoning.Config `toml:"reasoning"`
	Cache           cache.Config     `toml:"cache"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the CREDISCOPE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCrediscopeEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFile(BaseConfigFile)
}

// LoadFile is Load with an explicit base config path.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Engine.Merge(&overlay.Engine)
	c.Providers.Merge(&overlay.Providers)
	c.Reasoning.Merge(&overlay.Reasoning)
	c.Cache.Merge(&overlay.Cache)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Engine.Finalize(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if err := c.Providers.Finalize(os.Getenv(EnvGoogleAPIKey)); err != nil {
		return fmt.Errorf("providers: %w", err)
	}
	if err := c.Reasoning.Finalize(reasoningEnv); err != nil {
		return fmt.Errorf("reasoning: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return c.validateDeadlines()
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvCrediscopeShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCrediscopeVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

// validateDeadlines requires the collection deadline to cover every
// collector provider timeout.
func (c *Config) validateDeadlines() error {
	deadline := c.Engine.CollectionDeadlineDuration()
	collectors := map[string]time.Duration{
		"fact_check": c.Providers.FactCheck.TimeoutDuration(),
		"toxicity":   c.Providers.Toxicity.TimeoutDuration(),
		"url_safety": c.Providers.URLSafety.TimeoutDuration(),
	}
	for name, timeout := range collectors {
		if timeout > deadline {
			return fmt.Errorf("engine: collection_deadline %s is shorter than providers.%s.timeout %s", deadline, name, timeout)
		}
	}
	if c.Cache.Backend == cache.BackendBlob && !c.Storage.Enabled() {
		return fmt.Errorf("cache: blob backend requires storage.connection_string")
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvCrediscopeEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
