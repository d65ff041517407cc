package cli

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/rshade/agentview/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the agent page over HTTP",
		Long: `Serves GET /agent/<name> as a server-rendered HTML page.

Each page waits briefly for the agent to load. Pages that are still loading
refresh themselves until the data arrives.`,
		Example: `  # Serve on the configured address (default :3000)
  agentview serve

  # Serve on another port against a remote API
  agentview serve --addr :8080 --api-uri https://api.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFromContext(cmd.Context())
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			if debug, _ := cmd.Flags().GetBool("debug"); !debug {
				gin.SetMode(gin.ReleaseMode)
			}

			p, err := newPage(a.cfg, "agentview/"+cmd.Root().Version)
			if err != nil {
				return err
			}

			srv, err := server.New(p, server.Config{
				Addr:            addr,
				RenderWait:      a.cfg.Server.RenderWait,
				RefreshInterval: a.cfg.Server.RefreshInterval,
				Logger:          logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cmd.Printf("Serving agent pages on %s (API %s)\n", addr, p.BaseURL())
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :3000)")
	return cmd
}
