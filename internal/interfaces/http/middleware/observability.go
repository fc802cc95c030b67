package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/curelink/curelink/pkg/constants"
	"github.com/curelink/curelink/pkg/logger"
)

// RequestID assigns each request a correlation identifier, honoring one
// supplied by an upstream proxy. The identifier is echoed in the
// response and propagated through the request context for logs and
// audit events.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Request.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(constants.GinKeyRequestID, id)
		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, id)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Request-ID", id)

		c.Next()
	}
}

// Observability starts a trace span per request and emits one access log
// line after the handler finishes.
func Observability(tracer trace.Tracer, log logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()

		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+c.FullPath())
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "not_found"
		}

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.path", path),
			attribute.Int("http.status_code", c.Writer.Status()),
		)

		log.Info(c.Request.Context(), "request completed",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
		)
	}
}
