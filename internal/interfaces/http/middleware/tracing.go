// Package middleware provides HTTP middleware for the provisioning API.
package middleware

import (
	"net/http"

	"github.com/campus/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxRequestIDLength bounds the request ID copied into span attributes
const MaxRequestIDLength = 128

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig returns the otelgin middleware. Span names follow
// "HTTP METHOD route_pattern" (e.g., "POST /api/v1/provisioning/teachers").
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanAttributes copies the resolved request identity onto the current span.
// It must run after the tenant and actor middleware.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpanWithAttributes(c, span)
		}
		c.Next()
	}
}

func enrichSpanWithAttributes(c *gin.Context, span trace.Span) {
	ctx := c.Request.Context()
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		if len(requestID) > MaxRequestIDLength {
			requestID = requestID[:MaxRequestIDLength]
		}
		span.SetAttributes(attribute.String("request_id", requestID))
	}
	if tc, ok := GetTenantContext(c); ok {
		span.SetAttributes(
			attribute.String("tenant_id", tc.TenantID.String()),
			attribute.String("partition", tc.PartitionName),
		)
	}
	if actorID, ok := GetActorID(c); ok {
		span.SetAttributes(attribute.String("actor_id", actorID.String()))
	}
}

// SpanErrorMarker marks spans with error status for 4xx/5xx responses.
// Place it after the tracing middleware.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		statusCode := c.Writer.Status()
		if statusCode < http.StatusBadRequest {
			return
		}
		msg := "Client Error"
		if statusCode >= http.StatusInternalServerError {
			msg = "Internal Server Error"
		}
		span.SetStatus(codes.Error, msg)
		span.SetAttributes(attribute.Int("http.status_code", statusCode))
		if len(c.Errors) > 0 {
			span.SetAttributes(attribute.String("error", c.Errors.Last().Error()))
		}
	}
}
