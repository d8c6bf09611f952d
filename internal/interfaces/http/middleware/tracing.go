package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recyclemart/backend/internal/domain/identity"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing returns request tracing middleware built on otelgin. Placed early
// in the chain so every downstream middleware and handler runs inside the
// request span.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributes enriches the request span with the request ID, the actor
// ID once authentication has run, and an error status for 5xx responses.
// Placed after the JWT middleware so the actor is available.
func TracingAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := GetRequestID(c); requestID != "" {
				span.SetAttributes(attribute.String("request_id", requestID))
			}
			if v, exists := c.Get(ActorKey); exists {
				if actor, ok := v.(identity.Actor); ok {
					span.SetAttributes(attribute.String("actor_id", actor.ID.String()))
				}
			}
		}

		c.Next()

		if span.IsRecording() {
			if status := c.Writer.Status(); status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		}
	}
}
