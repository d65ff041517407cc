package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rshade/agentview/internal/page"
)

// Server defaults.
const (
	DefaultRenderWait      = 2 * time.Second
	DefaultRefreshInterval = 2 * time.Second

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr string

	// RenderWait bounds how long a page request waits for a fetch.
	RenderWait time.Duration

	// RefreshInterval is the meta refresh period of a loading page.
	RefreshInterval time.Duration

	Logger zerolog.Logger
}

// Server is the HTTP front end for a page.Page.
type Server struct {
	page   *page.Page
	cfg    Config
	logger zerolog.Logger
	engine *gin.Engine
}

// New builds the gin engine and routes for p.
func New(p *page.Page, cfg Config) (*Server, error) {
	if cfg.RenderWait < 0 {
		return nil, fmt.Errorf("render wait must not be negative: %s", cfg.RenderWait)
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		page:   p,
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "server").Logger(),
	}
	s.engine = s.routes(tmpl)
	return s, nil
}

func (s *Server) routes(tmpl *template.Template) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(recovery(s.logger), requestID(s.logger), requestLogger())

	r.GET("/healthz", s.healthz)

	agents := r.Group("/agent")
	{
		agents.GET("/", s.agentPage)
		agents.GET("/:agent", s.agentPage)
		agents.GET("/:agent/state", s.agentState)
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Ctx(ctx).Str("addr", s.cfg.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	s.logger.Info().Ctx(ctx).Msg("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
