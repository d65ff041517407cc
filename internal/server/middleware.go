package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rshade/agentview/internal/logging"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLength caps client-supplied request IDs.
const maxRequestIDLength = 128

// requestID assigns every request an ID, echoes it in the response and puts
// it, with a request-scoped logger, into the request context.
func requestID(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)

		l := base.With().Str("request_id", id).Logger()
		ctx := logging.ContextWithTraceID(c.Request.Context(), id)
		ctx = l.WithContext(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requestLogger logs one line per request with the request-scoped logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ctx := c.Request.Context()
		logger := logging.FromContext(ctx)

		ev := logger.Debug()
		if status >= http.StatusInternalServerError {
			ev = logger.Warn()
		}
		ev.Ctx(ctx).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request handled")
	}
}

// recovery turns panics into a 500 and logs them.
func recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Error().
			Interface("panic", err).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
