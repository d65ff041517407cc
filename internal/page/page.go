// Package page is the agent page: it reads the "agent" route segment,
// fetches that agent through the shared fetch cache, and hands the fetch
// state to a renderer.
//
// A page never fetches while the segment is undefined. Until routing
// resolves it renders the loading variant.
package page

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/rshade/agentview/internal/agixt"
	"github.com/rshade/agentview/internal/config"
	"github.com/rshade/agentview/internal/fetch"
	"github.com/rshade/agentview/internal/route"
	"github.com/rshade/agentview/internal/view"
)

// Param is the name of the dynamic route segment holding the agent name.
const Param = "agent"

// keyPrefix namespaces agent entries in the fetch cache.
const keyPrefix = "agent/"

// Key returns the fetch cache key for agent.
func Key(agent string) string {
	return keyPrefix + agent
}

// URL returns the request URL for agent under base.
func URL(base, agent string) string {
	return agixt.AgentURL(base, agent)
}

// Options configures a Page.
type Options struct {
	// BaseURL is the AGiXT API base. Empty means config.DefaultAPIURI.
	BaseURL string

	// Cache is the shared fetch cache. Nil means a private in-memory one.
	Cache *fetch.Cache

	// Client overrides the API client. Nil means a client for BaseURL.
	Client *agixt.Client

	Logger zerolog.Logger
}

// Page is the agent page. Safe for concurrent use.
type Page struct {
	baseURL string
	cache   *fetch.Cache
	client  *agixt.Client
	logger  zerolog.Logger
}

// New creates a Page.
func New(opts Options) *Page {
	base := config.ResolveAPIURI(opts.BaseURL)

	p := &Page{
		baseURL: base,
		cache:   opts.Cache,
		client:  opts.Client,
		logger:  opts.Logger.With().Str("component", "page").Logger(),
	}
	if p.cache == nil {
		p.cache = fetch.New(fetch.WithLogger(opts.Logger))
	}
	if p.client == nil {
		p.client = agixt.NewClient(base)
	} else {
		p.baseURL = p.client.BaseURL
	}
	return p
}

// BaseURL returns the API base the page fetches from.
func (p *Page) BaseURL() string {
	return p.baseURL
}

// Cache returns the fetch cache the page reads through.
func (p *Page) Cache() *fetch.Cache {
	return p.cache
}

// Request is what a route resolves to.
type Request struct {
	Agent route.Param
	// Key and URL are empty while Agent is undefined.
	Key string
	URL string
}

// Ready reports whether the route has produced an agent name.
func (r Request) Ready() bool {
	return r.Agent.Defined
}

// Resolve reads the agent segment from src and derives the fetch key and URL.
func (p *Page) Resolve(src route.Source) Request {
	req := Request{Agent: route.Lookup(src, Param)}
	if req.Agent.Defined {
		req.Key = Key(req.Agent.Value)
		req.URL = URL(p.baseURL, req.Agent.Value)
	}
	return req
}

// State returns the current fetch state for the route and starts a
// background fetch when one is due.
func (p *Page) State(ctx context.Context, src route.Source) fetch.State {
	req := p.Resolve(src)
	if !req.Ready() {
		p.logger.Debug().Ctx(ctx).Msg("agent segment undefined, not fetching")
		return fetch.State{Loading: true}
	}
	return p.cache.Use(ctx, req.Key, p.fetcher(req.Agent.Value))
}

// Load fetches the route's agent and blocks until it resolves.
func (p *Page) Load(ctx context.Context, src route.Source) fetch.State {
	req := p.Resolve(src)
	if !req.Ready() {
		return fetch.State{Loading: true}
	}
	return p.cache.Load(ctx, req.Key, p.fetcher(req.Agent.Value))
}

// Revalidate refetches the route's agent regardless of freshness.
func (p *Page) Revalidate(ctx context.Context, src route.Source) <-chan fetch.State {
	req := p.Resolve(src)
	return p.cache.Revalidate(ctx, req.Key, p.fetcher(req.Agent.Value))
}

// Invalidate drops the route's cached agent, in memory and on disk, so the
// next State or Load starts cold.
func (p *Page) Invalidate(src route.Source) {
	if req := p.Resolve(src); req.Ready() {
		p.cache.Invalidate(req.Key)
	}
}

func (p *Page) fetcher(agent string) fetch.Fetcher {
	return func(ctx context.Context) (json.RawMessage, error) {
		return p.client.GetAgent(ctx, agent)
	}
}

// Render renders the page for src with r.
func Render[T any](ctx context.Context, p *Page, src route.Source, r view.Renderer[T]) T {
	return view.Delegate(p.State(ctx, src), r)
}
