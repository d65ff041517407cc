package config

import (
	"fmt"
	"strconv"
)

// Environment variables understood by ApplyEnv.
const (
	EnvAPIURI    = "API_URI"
	EnvHome      = "AGENTVIEW_HOME"
	EnvLogLevel  = "AGENTVIEW_LOG_LEVEL"
	EnvLogFormat = "AGENTVIEW_LOG_FORMAT"
	EnvCacheTTL  = "AGENTVIEW_CACHE_TTL"
)

// ApplyEnv overlays environment values onto c using lookupEnv, which is
// os.LookupEnv in production. An empty API_URI is treated as unset.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) error {
	if lookupEnv == nil {
		return nil
	}
	if v, ok := lookupEnv(EnvAPIURI); ok && v != "" {
		c.API.URI = v
	}
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookupEnv(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
	if v, ok := lookupEnv(EnvCacheTTL); ok && v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvCacheTTL, v)
		}
		c.Cache.TTLSeconds = ttl
	}
	return nil
}
