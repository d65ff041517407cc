package server

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rshade/agentview/internal/agentcontrol"
	"github.com/rshade/agentview/internal/agixt"
	"github.com/rshade/agentview/internal/fetch"
	"github.com/rshade/agentview/internal/logging"
	"github.com/rshade/agentview/internal/route"
	"github.com/rshade/agentview/internal/view"
)

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// agentPage renders the HTML page for the :agent segment.
func (s *Server) agentPage(c *gin.Context) {
	ctx := c.Request.Context()
	req := s.page.Resolve(c)
	state := s.awaitState(ctx, c)

	data := PageData{
		Title:      "Agent",
		Agent:      req.Agent.Value,
		Status:     state.Status().String(),
		Validating: state.Validating,
		UpdatedAt:  state.UpdatedAt,
		RequestID:  c.Writer.Header().Get(HeaderRequestID),
		Body: view.Delegate[template.HTML](state, htmlRenderer{
			control: agentcontrol.New(req.Agent.Value),
		}),
	}
	if req.Ready() {
		data.Title = "Agent: " + req.Agent.Value
	}
	if state.Status() == fetch.StatusLoading {
		data.RefreshInterval = max(int(s.cfg.RefreshInterval.Round(time.Second).Seconds()), 1)
	}
	if state.HasData() && state.Err != nil {
		data.Warning = state.Err.Error()
	}

	logging.FromContext(ctx).Debug().Ctx(ctx).
		Str("agent", req.Agent.Value).
		Bool("defined", req.Ready()).
		Str("status", data.Status).
		Msg("rendering agent page")

	c.HTML(statusCode(state), "agent.html", data)
}

// agentState returns the current fetch state as JSON without waiting.
func (s *Server) agentState(c *gin.Context) {
	state := s.page.State(c.Request.Context(), c)
	if state.Key == "" {
		state.Key = s.page.Resolve(c).Key
	}
	c.JSON(statusCode(state), view.EnvelopeOf(state))
}

// awaitState returns the state for src, waiting up to RenderWait for a
// fetch that is still in flight.
func (s *Server) awaitState(ctx context.Context, src route.Source) fetch.State {
	req := s.page.Resolve(src)
	if !req.Ready() {
		return s.page.State(ctx, src)
	}

	updates, cancel := s.page.Cache().Subscribe(req.Key)
	defer cancel()

	state := s.page.State(ctx, src)
	if state.Status() != fetch.StatusLoading || s.cfg.RenderWait == 0 {
		return state
	}

	timer := time.NewTimer(s.cfg.RenderWait)
	defer timer.Stop()

	select {
	case resolved := <-updates:
		return resolved
	case <-timer.C:
		return s.page.Cache().Peek(req.Key)
	case <-ctx.Done():
		return state
	}
}

// statusCode maps a state to the HTTP status of the page showing it.
func statusCode(state fetch.State) int {
	if state.Status() != fetch.StatusError {
		return http.StatusOK
	}
	if agixt.IsNotFound(state.Err) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
