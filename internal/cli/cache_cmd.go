package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/agentview/internal/cache"
	"github.com/rshade/agentview/internal/config"
)

// errCacheDisabled is returned by cache commands when caching is off.
var errCacheDisabled = errors.New("cache is disabled (cache.enabled is false or --no-cache was given)")

// openFileStore opens the on-disk cache for the cache commands.
func openFileStore(cfg *config.Config) (*cache.FileStore, error) {
	if !cfg.Cache.Enabled {
		return nil, &ExitError{Code: ExitCodeUsage, Err: errCacheDisabled}
	}
	dir, err := cfg.CacheDirectory()
	if err != nil {
		return nil, err
	}
	return cache.NewFileStore(dir, true, cfg.Cache.TTLSeconds)
}

// NewCacheInfoCmd creates the cache info command.
func NewCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache location and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := appFromContext(cmd.Context()).cfg
			store, err := openFileStore(cfg)
			if err != nil {
				return err
			}
			stats, err := store.Stats()
			if err != nil {
				return err
			}

			p := message.NewPrinter(language.English)
			cmd.Printf("Directory: %s\n", stats.Directory)
			cmd.Print(p.Sprintf("Entries:   %d\n", stats.Entries))
			cmd.Print(p.Sprintf("Size:      %d bytes\n", stats.Bytes))
			cmd.Print(p.Sprintf("TTL:       %d seconds\n", cfg.Cache.TTLSeconds))
			return nil
		},
	}
}

// NewCacheClearCmd creates the cache clear command.
func NewCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openFileStore(appFromContext(cmd.Context()).cfg)
			if err != nil {
				return err
			}
			if err = store.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			logger.Info().Ctx(cmd.Context()).Str("directory", store.Directory()).Msg("cache cleared")
			cmd.Println("Cache cleared")
			return nil
		},
	}
}

// NewCachePruneCmd creates the cache prune command.
func NewCachePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openFileStore(appFromContext(cmd.Context()).cfg)
			if err != nil {
				return err
			}
			removed, err := store.CleanupExpired()
			if err != nil {
				return fmt.Errorf("pruning cache: %w", err)
			}
			p := message.NewPrinter(language.English)
			cmd.Print(p.Sprintf("Removed %d expired entries\n", removed))
			return nil
		},
	}
}
