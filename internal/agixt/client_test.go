package agixt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentURL(t *testing.T) {
	tests := []struct {
		base  string
		agent string
		want  string
	}{
		{base: "http://localhost:5000", agent: "alpha", want: "http://localhost:5000/api/agent/alpha"},
		{base: "https://api.example.com", agent: "beta", want: "https://api.example.com/api/agent/beta"},
		{base: "http://h", agent: "", want: "http://h/api/agent/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AgentURL(tt.base, tt.agent))
		assert.Equal(t, tt.base+"/api/agent/"+tt.agent, AgentURL(tt.base, tt.agent))
	}
}

func TestGetAgent_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/agent/alpha", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "agentview-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"idle"}` + "\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithHTTPClient(server.Client()), WithUserAgent("agentview-test"))

	data, err := client.GetAgent(context.Background(), "alpha")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"idle"}`, string(data))
}

func TestGetAgent_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"Agent not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	_, err := client.GetAgent(context.Background(), "ghost")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Contains(t, se.Body, "Agent not found")
	assert.Equal(t, server.URL+"/api/agent/ghost", se.URL)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "404")
}

func TestGetAgent_BodyErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "empty", body: "", wantErr: ErrEmptyResponse},
		{name: "whitespace", body: "  \n", wantErr: ErrEmptyResponse},
		{name: "html", body: "<html>oops</html>", wantErr: ErrInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).GetAgent(context.Background(), "alpha")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, IsNotFound(err))
		})
	}
}

func TestGetAgent_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"` + strings.Repeat("a", maxResponseBytes) + `"`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).GetAgent(context.Background(), "alpha")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestGetAgent_TransportErrors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := NewClient(url).GetAgent(context.Background(), "alpha")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "/api/agent/alpha")
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL, WithTimeout(20*time.Millisecond)).GetAgent(context.Background(), "alpha")
		require.Error(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewClient(server.URL).GetAgent(ctx, "alpha")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("malformed url", func(t *testing.T) {
		_, err := NewClient("http://[::1").GetAgent(context.Background(), "alpha")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "building request")
	})
}

func TestWithTimeout_LeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	a := NewClient("http://a", WithHTTPClient(shared), WithTimeout(5*time.Second))
	b := NewClient("http://b", WithTimeout(5*time.Second), WithHTTPClient(shared))

	assert.Equal(t, time.Minute, shared.Timeout, "caller's client is not modified")
	assert.Equal(t, 5*time.Second, a.HTTPClient.Timeout)
	assert.NotSame(t, shared, a.HTTPClient)
	assert.Same(t, shared, b.HTTPClient, "a later WithHTTPClient wins")

	c := NewClient("http://c", WithTimeout(time.Second))
	d := NewClient("http://d")
	assert.Equal(t, time.Second, c.HTTPClient.Timeout)
	assert.Zero(t, d.HTTPClient.Timeout)
}
