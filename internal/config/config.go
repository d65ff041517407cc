package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// DefaultAPIURI is the AGiXT API base used when none is configured.
const DefaultAPIURI = "http://localhost:5000"

// Default values applied by New and applyDefaults.
const (
	DefaultAPITimeout       = 30 * time.Second
	DefaultCacheTTLSeconds  = 3600
	DefaultDedupingInterval = 2 * time.Second
	DefaultServerAddr       = ":3000"
	DefaultRenderWait       = 2 * time.Second
	DefaultRefreshInterval  = 2 * time.Second
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
	DefaultOutputFormat     = "text"
)

// ErrInvalidConfig is returned (wrapped) by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete agentview configuration. It is built once at the
// program edge and passed down explicitly; no package reads it from a global.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Output  OutputConfig  `yaml:"output"`
}

// APIConfig locates the AGiXT backend.
type APIConfig struct {
	// URI is the base URL; "/api/agent/<name>" is appended to it verbatim.
	URI     string        `yaml:"uri"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig controls the fetch cache and its on-disk store. A zero
// TTLSeconds or DedupingInterval means the default, not "no caching"; use
// Enabled: false to turn the on-disk store off.
type CacheConfig struct {
	Enabled          bool          `yaml:"enabled"`
	TTLSeconds       int           `yaml:"ttl_seconds"`
	Directory        string        `yaml:"directory"`
	DedupingInterval time.Duration `yaml:"deduping_interval"`
}

// LoggingConfig is the logging section of the config file.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ServerConfig controls `agentview serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// RenderWait is how long a page request waits for an in-flight fetch
	// before it renders the loading state instead. Zero means
	// DefaultRenderWait.
	RenderWait time.Duration `yaml:"render_wait"`
	// RefreshInterval is how often a loading page reloads itself. Zero means
	// DefaultRefreshInterval.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// OutputConfig controls non-interactive output.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// New returns a Config populated with defaults.
func New() *Config {
	cfg := &Config{
		API: APIConfig{URI: DefaultAPIURI},
		Cache: CacheConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero-valued fields, so a zero duration or TTL in the
// file selects the default. Cache.Enabled is left alone since
// false is a meaningful setting.
func (c *Config) applyDefaults() {
	c.API.URI = ResolveAPIURI(c.API.URI)
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = DefaultCacheTTLSeconds
	}
	if c.Cache.DedupingInterval == 0 {
		c.Cache.DedupingInterval = DefaultDedupingInterval
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.RenderWait == 0 {
		c.Server.RenderWait = DefaultRenderWait
	}
	if c.Server.RefreshInterval == 0 {
		c.Server.RefreshInterval = DefaultRefreshInterval
	}
	if c.Output.DefaultFormat == "" {
		c.Output.DefaultFormat = DefaultOutputFormat
	}
}

// ResolveAPIURI returns uri, or DefaultAPIURI when uri is empty.
func ResolveAPIURI(uri string) string {
	if uri == "" {
		return DefaultAPIURI
	}
	return uri
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.URI)
	if err != nil {
		return fmt.Errorf("%w: api.uri %q: %w", ErrInvalidConfig, c.API.URI, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: api.uri %q must be an http or https URL", ErrInvalidConfig, c.API.URI)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("%w: api.timeout must be >= 0", ErrInvalidConfig)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("%w: cache.ttl_seconds must be >= 0, got %d", ErrInvalidConfig, c.Cache.TTLSeconds)
	}
	if c.Cache.DedupingInterval < 0 {
		return fmt.Errorf("%w: cache.deduping_interval must be >= 0", ErrInvalidConfig)
	}
	if c.Server.RenderWait < 0 {
		return fmt.Errorf("%w: server.render_wait must be >= 0", ErrInvalidConfig)
	}
	if c.Server.RefreshInterval < time.Second {
		return fmt.Errorf("%w: server.refresh_interval must be at least 1s", ErrInvalidConfig)
	}
	switch c.Output.DefaultFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: output.default_format %q (want text or json)", ErrInvalidConfig, c.Output.DefaultFormat)
	}
	return nil
}
