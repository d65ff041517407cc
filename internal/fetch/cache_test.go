package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/agentview/internal/cache"
)

// countingFetcher returns payload after waiting for release (if non-nil) and
// counts how many times it ran.
type countingFetcher struct {
	calls   atomic.Int32
	payload json.RawMessage
	err     error
	release chan struct{}
}

func (f *countingFetcher) fetch(ctx context.Context) (json.RawMessage, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.payload, f.err
}

func waitFor(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "channel closed without a state")
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state")
		return State{}
	}
}

func TestStateStatus(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		state State
		want  Status
	}{
		{"empty", State{}, StatusLoading},
		{"loading", State{Loading: true, Validating: true}, StatusLoading},
		{"error without data", State{Err: boom}, StatusError},
		{"data", State{Data: json.RawMessage(`{}`)}, StatusSuccess},
		{"stale data with error", State{Data: json.RawMessage(`{}`), Err: boom}, StatusSuccess},
		{"data revalidating", State{Data: json.RawMessage(`{}`), Validating: true}, StatusSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Status())
		})
	}

	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "unknown", Status(42).String())
}

func TestUse_InFlightThenResolved(t *testing.T) {
	c := New()
	f := &countingFetcher{payload: json.RawMessage(`{"status":"idle"}`), release: make(chan struct{})}

	updates, cancel := c.Subscribe("agent/alpha")
	defer cancel()

	first := c.Use(context.Background(), "agent/alpha", f.fetch)
	assert.Equal(t, StatusLoading, first.Status())
	assert.True(t, first.Loading)
	assert.True(t, first.Validating)
	assert.Nil(t, first.Data)
	assert.NoError(t, first.Err)

	close(f.release)
	resolved := waitFor(t, updates)

	assert.Equal(t, StatusSuccess, resolved.Status())
	assert.JSONEq(t, `{"status":"idle"}`, string(resolved.Data))
	assert.NoError(t, resolved.Err)
	assert.False(t, resolved.Loading)
	assert.False(t, resolved.Validating)
	assert.False(t, resolved.UpdatedAt.IsZero())

	assert.Equal(t, resolved, c.Peek("agent/alpha"))
}

func TestUse_EmptyKeyIsNoop(t *testing.T) {
	c := New()
	f := &countingFetcher{payload: json.RawMessage(`{}`)}

	state := c.Use(context.Background(), "", f.fetch)
	assert.Equal(t, StatusLoading, state.Status())
	assert.True(t, state.Loading)

	assert.Equal(t, StatusLoading, c.Load(context.Background(), "", f.fetch).Status())
	assert.Equal(t, StatusLoading, waitFor(t, c.Revalidate(context.Background(), "", f.fetch)).Status())
	assert.Equal(t, StatusLoading, c.Peek("").Status())
	assert.Zero(t, f.calls.Load())
}

func TestUse_Deduplicates(t *testing.T) {
	c := New(WithDedupingInterval(time.Hour))
	f := &countingFetcher{payload: json.RawMessage(`{}`), release: make(chan struct{})}

	updates, cancel := c.Subscribe("agent/alpha")
	defer cancel()

	for range 5 {
		c.Use(context.Background(), "agent/alpha", f.fetch)
	}
	close(f.release)
	waitFor(t, updates)

	// Fresh within the deduping interval: no new fetch.
	state := c.Use(context.Background(), "agent/alpha", f.fetch)
	assert.False(t, state.Validating)
	assert.Equal(t, StatusSuccess, state.Status())
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestUse_RevalidatesAfterInterval(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(WithDedupingInterval(time.Second))
	c.now = func() time.Time { return now }

	f := &countingFetcher{payload: json.RawMessage(`{"v":1}`)}
	c.Load(context.Background(), "agent/alpha", f.fetch)

	updates, cancel := c.Subscribe("agent/alpha")
	defer cancel()

	now = now.Add(2 * time.Second)
	f.payload = json.RawMessage(`{"v":2}`)
	stale := c.Use(context.Background(), "agent/alpha", f.fetch)
	assert.True(t, stale.Validating)
	assert.False(t, stale.Loading, "stale data is shown while revalidating")
	assert.JSONEq(t, `{"v":1}`, string(stale.Data))

	fresh := waitFor(t, updates)
	assert.JSONEq(t, `{"v":2}`, string(fresh.Data))
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestLoad_ConcurrentCallsShareFetch(t *testing.T) {
	c := New()
	f := &countingFetcher{payload: json.RawMessage(`{"ok":true}`), release: make(chan struct{})}

	var wg sync.WaitGroup
	results := make([]State, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.Load(context.Background(), "agent/alpha", f.fetch)
		}()
	}

	// Give the goroutines a moment to join the same flight.
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	for _, r := range results {
		assert.JSONEq(t, `{"ok":true}`, string(r.Data))
	}
}

func TestLoad_ErrorWithoutData(t *testing.T) {
	c := New()
	boom := errors.New("connection refused")
	f := &countingFetcher{err: boom}

	state := c.Load(context.Background(), "agent/alpha", f.fetch)
	assert.Equal(t, StatusError, state.Status())
	assert.ErrorIs(t, state.Err, boom)
	assert.False(t, state.Loading)
	assert.Nil(t, state.Data)
}

func TestRevalidate_FailureKeepsData(t *testing.T) {
	c := New()
	f := &countingFetcher{payload: json.RawMessage(`{"status":"idle"}`)}
	c.Load(context.Background(), "agent/alpha", f.fetch)

	boom := errors.New("503")
	f.payload = nil
	f.err = boom
	state := waitFor(t, c.Revalidate(context.Background(), "agent/alpha", f.fetch))

	assert.Equal(t, StatusSuccess, state.Status())
	assert.JSONEq(t, `{"status":"idle"}`, string(state.Data))
	assert.ErrorIs(t, state.Err, boom)

	f.err = nil
	f.payload = json.RawMessage(`{"status":"busy"}`)
	state = waitFor(t, c.Revalidate(context.Background(), "agent/alpha", f.fetch))
	assert.NoError(t, state.Err, "a successful fetch clears the error")
	assert.JSONEq(t, `{"status":"busy"}`, string(state.Data))
}

func TestStore_WriteThroughAndSeed(t *testing.T) {
	store := cache.NewMemoryStore(60)
	f := &countingFetcher{payload: json.RawMessage(`{"status":"idle"}`)}

	first := New(WithStore(store))
	first.Load(context.Background(), "agent/alpha", f.fetch)

	persisted, err := store.Get("agent/alpha")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"idle"}`, string(persisted.Data))

	// A new cache over the same store starts with stale data.
	second := New(WithStore(store))
	seeded := second.Peek("agent/alpha")
	assert.Equal(t, StatusSuccess, seeded.Status())
	assert.JSONEq(t, `{"status":"idle"}`, string(seeded.Data))
	assert.False(t, seeded.Validating)

	updates, cancel := second.Subscribe("agent/alpha")
	defer cancel()
	state := second.Use(context.Background(), "agent/alpha", f.fetch)
	assert.True(t, state.Validating, "seeded entries are revalidated")
	assert.False(t, state.Loading)
	waitFor(t, updates)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestFileStore_SimilarKeysStaySeparate(t *testing.T) {
	store, err := cache.NewFileStore(t.TempDir(), true, 60)
	require.NoError(t, err)

	first := New(WithStore(store))
	f := &countingFetcher{payload: json.RawMessage(`{"who":"a/b"}`)}
	require.Equal(t, StatusSuccess, first.Load(context.Background(), "agent/a/b", f.fetch).Status())

	second := New(WithStore(store))
	assert.False(t, second.Peek("agent/a_b").HasData())

	down := &countingFetcher{err: errors.New("api down")}
	state := second.Load(context.Background(), "agent/a_b", down.fetch)
	assert.Equal(t, StatusError, state.Status())
	assert.False(t, state.HasData())

	seeded := second.Peek("agent/a/b")
	assert.JSONEq(t, `{"who":"a/b"}`, string(seeded.Data))
}

func TestInvalidate(t *testing.T) {
	store := cache.NewMemoryStore(60)
	c := New(WithStore(store))
	f := &countingFetcher{payload: json.RawMessage(`{}`)}
	c.Load(context.Background(), "agent/alpha", f.fetch)

	c.Invalidate("agent/alpha")
	c.Invalidate("")

	assert.Equal(t, StatusLoading, c.Peek("agent/alpha").Status())
	_, err := store.Get("agent/alpha")
	assert.ErrorIs(t, err, cache.ErrCacheNotFound)
}

func TestSubscribe_Cancel(t *testing.T) {
	c := New()
	ch, cancel := c.Subscribe("agent/alpha")
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// Settling with no subscribers must not block or panic.
	f := &countingFetcher{payload: json.RawMessage(`{}`)}
	c.Load(context.Background(), "agent/alpha", f.fetch)
}

func TestUse_OutlivesCallerContext(t *testing.T) {
	c := New()
	f := &countingFetcher{payload: json.RawMessage(`{}`), release: make(chan struct{})}

	updates, cancelSub := c.Subscribe("agent/alpha")
	defer cancelSub()

	ctx, cancel := context.WithCancel(context.Background())
	c.Use(ctx, "agent/alpha", f.fetch)
	cancel()
	close(f.release)

	state := waitFor(t, updates)
	assert.NoError(t, state.Err)
	assert.Equal(t, StatusSuccess, state.Status())
}
