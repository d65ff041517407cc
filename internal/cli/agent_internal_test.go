package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/agentview/internal/fetch"
)

func TestNoColorSet(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{"unset", map[string]string{}, false},
		{"empty", map[string]string{"NO_COLOR": ""}, false},
		{"set", map[string]string{"NO_COLOR": "1"}, true},
		{"any value", map[string]string{"NO_COLOR": "false"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				v, ok := tt.env[k]
				return v, ok
			}
			assert.Equal(t, tt.want, noColorSet(lookup))
		})
	}
}

func TestFetchedAgo(t *testing.T) {
	assert.Empty(t, fetchedAgo(fetch.State{}))
	assert.Equal(t, " (fetched 1m30s ago)",
		fetchedAgo(fetch.State{UpdatedAt: time.Now().Add(-90 * time.Second)}))
}
