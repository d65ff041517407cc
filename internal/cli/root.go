package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/agentview/internal/config"
	"github.com/rshade/agentview/internal/logging"
)

// defaultUseName is the command name when it cannot be taken from argv.
const defaultUseName = "agentview"

// logger is the package-level logger for CLI operations.
var logger = zerolog.Nop() //nolint:gochecknoglobals // Required for zerolog context integration

// appKey is the context key for the per-invocation app.
type appKey struct{}

// app is what PersistentPreRunE resolves before any subcommand runs.
type app struct {
	cfg       *config.Config
	lookupEnv func(string) (string, bool)
}

func appFromContext(ctx context.Context) *app {
	if a, ok := ctx.Value(appKey{}).(*app); ok {
		return a
	}
	return &app{cfg: config.New(), lookupEnv: func(string) (string, bool) { return "", false }}
}

// NewRootCmd creates the root Cobra command for the agentview CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithArgs(ver, os.Args, os.LookupEnv)
}

// NewRootCmdWithArgs creates the root command with explicit args and env
// lookup for testability. lookupEnv is the only way the CLI reads the
// environment; API_URI reaches the page through the resolved config.
func NewRootCmdWithArgs(
	ver string,
	args []string,
	lookupEnv func(string) (string, bool),
) *cobra.Command {
	var logResult *logging.LogPathResult

	useName := defaultUseName
	if len(args) > 0 && args[0] != "" {
		useName = filepath.Base(args[0])
	}

	cmd := &cobra.Command{
		Use:           useName,
		Short:         "View AGiXT agents in the terminal or the browser",
		Long:          "agentview fetches an AGiXT agent from <API_URI>/api/agent/<name> and renders it.",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, lookupEnv)
			if err != nil {
				return &ExitError{Code: ExitCodeUsage, Err: err}
			}

			result := setupLogging(cmd, cfg)
			logResult = &result

			ctx := context.WithValue(cmd.Context(), appKey{}, &app{cfg: cfg, lookupEnv: lookupEnv})
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default $AGENTVIEW_HOME/config.yaml)")
	cmd.PersistentFlags().String("api-uri", "", "AGiXT API base URL (overrides API_URI and the config file)")
	cmd.PersistentFlags().
		Int("cache-ttl", 0, "cache TTL in seconds (0 = use config default, overrides config file and env var)")
	cmd.PersistentFlags().Bool("no-cache", false, "do not read or write the on-disk cache")

	cmd.AddCommand(NewAgentCmd(), NewServeCmd(), newConfigCmd(), newCacheCmd())
	return cmd
}

// resolveConfig applies, in increasing precedence: defaults, the config
// file, the environment and flags.
func resolveConfig(cmd *cobra.Command, lookupEnv func(string) (string, bool)) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		if path, err = config.GetConfigPath(); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err = cfg.ApplyEnv(lookupEnv); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-uri") {
		cfg.API.URI, _ = flags.GetString("api-uri")
		cfg.API.URI = config.ResolveAPIURI(cfg.API.URI)
	}
	if flags.Changed("cache-ttl") {
		ttl, _ := flags.GetInt("cache-ttl")
		if ttl < 0 {
			return nil, fmt.Errorf("cache-ttl must be >= 0, got %d", ttl)
		}
		if ttl > 0 {
			cfg.Cache.TTLSeconds = ttl
		}
	}
	if noCache, _ := flags.GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultTimeout bounds a whole non-interactive command.
const defaultTimeout = 2 * time.Minute

const rootCmdExample = `  # Show an agent (interactive in a terminal)
  agentview agent alpha

  # Use a remote AGiXT API
  API_URI=https://api.example.com agentview agent beta

  # Fetch several agents as JSON
  agentview agent alpha beta --output json

  # Serve the agent page at http://localhost:3000/agent/<name>
  agentview serve --addr :3000

  # Initialize configuration
  agentview config init`

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigPathCmd())
	return cmd
}

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "On-disk agent cache commands"}
	cmd.AddCommand(NewCacheInfoCmd(), NewCacheClearCmd(), NewCachePruneCmd())
	return cmd
}
