package fetch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rshade/agentview/internal/cache"
)

// DefaultDedupingInterval is how long a resolved key is considered fresh.
const DefaultDedupingInterval = 2 * time.Second

// subscriberBuffer is the channel capacity given to each subscriber.
// Deliveries to a full channel are dropped.
const subscriberBuffer = 4

// Option configures a Cache.
type Option func(*Cache)

// WithStore persists successful payloads to store. Entries already in the
// store are served as stale data until they are revalidated.
func WithStore(store cache.Store) Option {
	return func(c *Cache) {
		c.store = store
	}
}

// WithDedupingInterval sets how long after a fetch resolves Use will skip
// starting another one for the same key.
func WithDedupingInterval(d time.Duration) Option {
	return func(c *Cache) {
		if d >= 0 {
			c.dedupingInterval = d
		}
	}
}

// WithLogger sets the logger used for cache events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Cache) {
		c.logger = l.With().Str("component", "fetch").Logger()
	}
}

// entry is the cache's record for one key.
type entry struct {
	state State

	// resolvedAt is when the last fetch finished, successful or not.
	// Zero for entries seeded from the store.
	resolvedAt time.Time

	inflight bool
}

// Cache is a stale-while-revalidate cache. Safe for concurrent use.
type Cache struct {
	store            cache.Store
	dedupingInterval time.Duration
	logger           zerolog.Logger
	now              func() time.Time

	group singleflight.Group

	mu      sync.Mutex
	entries map[string]*entry
	subs    map[string]map[int]chan State
	nextSub int
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		dedupingInterval: DefaultDedupingInterval,
		logger:           zerolog.Nop(),
		now:              time.Now,
		entries:          make(map[string]*entry),
		subs:             make(map[string]map[int]chan State),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Peek returns the current snapshot for key without starting a fetch.
func (c *Cache) Peek(key string) State {
	if key == "" {
		return State{Loading: true}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.entryLocked(key); e != nil {
		return e.state
	}
	return State{Key: key, Loading: true}
}

// Use returns the current snapshot for key and, unless the key is fresh or
// already being fetched, starts fn in the background. The returned snapshot
// has Validating set when a fetch is in flight.
//
// An empty key means the caller is not ready to fetch; Use does nothing and
// returns a loading state.
func (c *Cache) Use(ctx context.Context, key string, fn Fetcher) State {
	if key == "" {
		return State{Loading: true}
	}

	c.mu.Lock()
	e := c.entryLocked(key)
	if e == nil {
		e = &entry{state: State{Key: key, Loading: true}}
		c.entries[key] = e
	}

	start := !e.inflight && c.staleLocked(e)
	if start {
		c.markInflightLocked(e)
	}
	snapshot := e.state
	c.mu.Unlock()

	if start {
		// The fetch outlives the caller, e.g. an HTTP request that has
		// already rendered its loading page.
		bg := context.WithoutCancel(ctx)
		go c.resolve(bg, key, fn)
	}

	return snapshot
}

// Load fetches key and blocks until the fetch resolves. Concurrent calls for
// the same key share a single fetch.
func (c *Cache) Load(ctx context.Context, key string, fn Fetcher) State {
	if key == "" {
		return State{Loading: true}
	}

	c.mu.Lock()
	e := c.entryLocked(key)
	if e == nil {
		e = &entry{state: State{Key: key, Loading: true}}
		c.entries[key] = e
	}
	c.markInflightLocked(e)
	c.mu.Unlock()

	return c.resolve(ctx, key, fn)
}

// Revalidate starts a fetch for key regardless of freshness and delivers
// the resolved state on the returned channel, which is then closed.
func (c *Cache) Revalidate(ctx context.Context, key string, fn Fetcher) <-chan State {
	out := make(chan State, 1)
	if key == "" {
		out <- State{Loading: true}
		close(out)
		return out
	}

	go func() {
		defer close(out)
		out <- c.Load(ctx, key, fn)
	}()
	return out
}

// Invalidate forgets key in memory and in the store.
func (c *Cache) Invalidate(key string) {
	if key == "" {
		return
	}

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.Delete(key); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to delete persisted entry")
	}
}

// Subscribe returns a channel that receives every resolved state for key
// and a function that cancels the subscription and closes the channel.
func (c *Cache) Subscribe(key string) (<-chan State, func()) {
	ch := make(chan State, subscriberBuffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	if c.subs[key] == nil {
		c.subs[key] = make(map[int]chan State)
	}
	c.subs[key][id] = ch
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs[key], id)
			if len(c.subs[key]) == 0 {
				delete(c.subs, key)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// resolve runs fn through the singleflight group and settles the result.
func (c *Cache) resolve(ctx context.Context, key string, fn Fetcher) State {
	v, _, _ := c.group.Do(key, func() (any, error) {
		start := c.now()
		data, err := fn(ctx)
		state := c.settle(key, data, err)

		ev := c.logger.Debug()
		if err != nil {
			ev = c.logger.Warn().Err(err)
		}
		ev.Ctx(ctx).
			Str("key", key).
			Dur("duration", c.now().Sub(start)).
			Bool("has_data", state.HasData()).
			Msg("fetch resolved")
		return state, nil
	})
	return v.(State)
}

// settle records the outcome of a fetch and notifies subscribers.
func (c *Cache) settle(key string, data []byte, err error) State {
	now := c.now()

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		// Invalidated while in flight.
		e = &entry{state: State{Key: key}}
		c.entries[key] = e
	}

	if err != nil {
		e.state.Err = err
	} else {
		e.state.Data = data
		e.state.Err = nil
		e.state.UpdatedAt = now
	}
	e.state.Loading = false
	e.state.Validating = false
	e.inflight = false
	e.resolvedAt = now

	state := e.state
	for _, ch := range c.subs[key] {
		select {
		case ch <- state:
		default:
		}
	}
	c.mu.Unlock()

	if err == nil {
		c.persist(key, data)
	}
	return state
}

func (c *Cache) persist(key string, data []byte) {
	if c.store == nil || len(data) == 0 {
		return
	}
	if err := c.store.Set(key, data); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to persist entry")
	}
}

// entryLocked returns the entry for key, seeding it from the store when
// memory has none. Returns nil when neither has it. c.mu must be held.
func (c *Cache) entryLocked(key string) *entry {
	if e, ok := c.entries[key]; ok {
		return e
	}
	if c.store == nil {
		return nil
	}

	stored, err := c.store.Get(key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheNotFound) &&
			!errors.Is(err, cache.ErrCacheExpired) &&
			!errors.Is(err, cache.ErrCacheDisabled) {
			c.logger.Debug().Err(err).Str("key", key).Msg("ignoring unreadable persisted entry")
		}
		return nil
	}

	e := &entry{state: State{
		Key:       key,
		Data:      stored.Data,
		UpdatedAt: stored.CreatedAt,
	}}
	c.entries[key] = e
	return e
}

// staleLocked reports whether e is due for a fetch. c.mu must be held.
func (c *Cache) staleLocked(e *entry) bool {
	if e.resolvedAt.IsZero() {
		return true
	}
	return c.now().Sub(e.resolvedAt) >= c.dedupingInterval
}

func (c *Cache) markInflightLocked(e *entry) {
	e.inflight = true
	e.state.Validating = true
	e.state.Loading = !e.state.HasData()
}
