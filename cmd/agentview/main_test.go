package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/agentview/internal/cli"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version)
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version)
		require.NotNil(t, root)
		assert.NotEmpty(t, root.Use)
		assert.Equal(t, version, root.Version)
	})
}

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil error returns 0", err: nil, want: 0},
		{name: "generic error", err: errors.New("generic error"), want: 1},
		{name: "usage error", err: &cli.ExitError{Code: cli.ExitCodeUsage, Err: errors.New("bad flag")}, want: 2},
		{
			name: "wrapped exit error",
			err:  fmt.Errorf("outer: %w", &cli.ExitError{Code: 3, Err: errors.New("inner")}),
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cli.ExitCode(tt.err))
		})
	}
}
