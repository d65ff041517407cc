package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetConfigDir returns the agentview configuration directory.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".agentview"), nil
}

// GetConfigPath returns the path of config.yaml in the configuration directory.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// GetCacheDir returns the default on-disk fetch cache directory.
func GetCacheDir() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// EnsureLogDir creates the parent directory of the configured log file.
// It does nothing when no log file is configured.
func (c *Config) EnsureLogDir() error {
	if c.Logging.File == "" {
		return nil
	}
	logDir := filepath.Dir(c.Logging.File)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}

// CacheDirectory returns the configured cache directory, falling back to
// GetCacheDir.
func (c *Config) CacheDirectory() (string, error) {
	if c.Cache.Directory != "" {
		return c.Cache.Directory, nil
	}
	return GetCacheDir()
}
