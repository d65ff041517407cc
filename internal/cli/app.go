package cli

import (
	"github.com/rshade/agentview/internal/agixt"
	"github.com/rshade/agentview/internal/cache"
	"github.com/rshade/agentview/internal/config"
	"github.com/rshade/agentview/internal/fetch"
	"github.com/rshade/agentview/internal/page"
)

// openStore returns the on-disk store, or an in-memory one when the cache
// is disabled.
func openStore(cfg *config.Config) (cache.Store, error) {
	if !cfg.Cache.Enabled {
		return cache.NewMemoryStore(cfg.Cache.TTLSeconds), nil
	}
	dir, err := cfg.CacheDirectory()
	if err != nil {
		return nil, err
	}
	return cache.NewFileStore(dir, true, cfg.Cache.TTLSeconds)
}

// newPage wires config into a page: API client, fetch cache and store.
func newPage(cfg *config.Config, userAgent string) (*page.Page, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	fc := fetch.New(
		fetch.WithStore(store),
		fetch.WithDedupingInterval(cfg.Cache.DedupingInterval),
		fetch.WithLogger(logger),
	)
	client := agixt.NewClient(cfg.API.URI,
		agixt.WithTimeout(cfg.API.Timeout),
		agixt.WithUserAgent(userAgent),
	)

	return page.New(page.Options{
		BaseURL: cfg.API.URI,
		Cache:   fc,
		Client:  client,
		Logger:  logger,
	}), nil
}
