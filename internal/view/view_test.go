package view

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/agentview/internal/fetch"
)

// recorder captures which variant Delegate chose.
type recorder struct {
	variant string
	err     error
	data    json.RawMessage
}

func (r *recorder) Loading() string {
	r.variant = "loading"
	return r.variant
}

func (r *recorder) Error(err error) string {
	r.variant = "error"
	r.err = err
	return r.variant
}

func (r *recorder) Success(data json.RawMessage) string {
	r.variant = "success"
	r.data = data
	return r.variant
}

func TestDelegate(t *testing.T) {
	boom := errors.New("boom")

	t.Run("in flight renders loading with no data or error", func(t *testing.T) {
		r := &recorder{}
		out := Delegate[string](fetch.State{Key: "agent/alpha", Loading: true, Validating: true}, r)
		assert.Equal(t, "loading", out)
		assert.Nil(t, r.data)
		assert.NoError(t, r.err)
	})

	t.Run("resolved renders success with the exact payload", func(t *testing.T) {
		r := &recorder{}
		payload := json.RawMessage(`{"status":"idle"}`)
		out := Delegate[string](fetch.State{Key: "agent/alpha", Data: payload}, r)
		assert.Equal(t, "success", out)
		assert.Equal(t, payload, r.data)
		assert.NoError(t, r.err)
	})

	t.Run("failure renders error", func(t *testing.T) {
		r := &recorder{}
		out := Delegate[string](fetch.State{Key: "agent/alpha", Err: boom}, r)
		assert.Equal(t, "error", out)
		assert.ErrorIs(t, r.err, boom)
	})

	t.Run("stale data wins over error", func(t *testing.T) {
		r := &recorder{}
		Delegate[string](fetch.State{Data: json.RawMessage(`{}`), Err: boom}, r)
		assert.Equal(t, "success", r.variant)
	})
}

func TestFuncs(t *testing.T) {
	r := Funcs[int]{
		OnLoading: func() int { return 1 },
		OnError:   func(error) int { return 2 },
		OnSuccess: func(json.RawMessage) int { return 3 },
	}
	assert.Equal(t, 1, Delegate[int](fetch.State{}, r))
	assert.Equal(t, 2, Delegate[int](fetch.State{Err: errors.New("x")}, r))
	assert.Equal(t, 3, Delegate[int](fetch.State{Data: json.RawMessage(`1`)}, r))

	var empty Funcs[int]
	assert.Zero(t, empty.Loading())
	assert.Zero(t, empty.Error(nil))
	assert.Zero(t, empty.Success(nil))
}

func TestText(t *testing.T) {
	r := Text{}
	assert.Equal(t, LoadingText, r.Loading())
	assert.Equal(t, "Failed to load: boom", r.Error(errors.New("boom")))
	assert.Equal(t, "Failed to load: unknown error", r.Error(nil))
	assert.Equal(t, "{\n  \"status\": \"idle\"\n}", r.Success(json.RawMessage(`{"status":"idle"}`)))

	custom := Text{Content: func(data json.RawMessage) string { return "agent " + string(data) }}
	assert.Equal(t, `agent "x"`, custom.Success(json.RawMessage(`"x"`)))
}

func TestPrettyJSON(t *testing.T) {
	assert.Equal(t, "[\n  1,\n  2\n]", PrettyJSON([]byte(`[1,2]`)))
	assert.Equal(t, "not json", PrettyJSON([]byte("not json")))
}

func TestEnvelopeOf(t *testing.T) {
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		state fetch.State
		want  string
	}{
		{
			name:  "loading",
			state: fetch.State{Key: "agent/alpha", Loading: true, Validating: true},
			want:  `{"key":"agent/alpha","status":"loading","validating":true}`,
		},
		{
			name:  "error",
			state: fetch.State{Key: "agent/alpha", Err: errors.New("404 Not Found")},
			want:  `{"key":"agent/alpha","status":"error","error":"404 Not Found"}`,
		},
		{
			name:  "success",
			state: fetch.State{Key: "agent/alpha", Data: json.RawMessage(`{"status":"idle"}`), UpdatedAt: updated},
			want:  `{"key":"agent/alpha","status":"success","data":{"status":"idle"},"updated_at":"2026-03-01T12:00:00Z"}`,
		},
		{
			name: "stale with error",
			state: fetch.State{
				Key:       "agent/alpha",
				Data:      json.RawMessage(`{"status":"idle"}`),
				Err:       errors.New("timeout"),
				UpdatedAt: updated,
			},
			want: `{"key":"agent/alpha","status":"success","data":{"status":"idle"},"error":"timeout","updated_at":"2026-03-01T12:00:00Z"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(EnvelopeOf(tt.state))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(out))
		})
	}
}
