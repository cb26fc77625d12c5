package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vyrodovalexey/avadispatch/internal/observability"
	"github.com/vyrodovalexey/avadispatch/internal/util"
)

const (
	// RequestIDHeader carries the request correlation ID.
	RequestIDHeader = "X-Request-ID"

	// endpointContextKey is the gin context key under which dispatch
	// records the matched endpoint template. The metrics middleware
	// reads it after the handler chain has run.
	endpointContextKey = "dispatch.endpoint"
)

// RequestID assigns a correlation ID to the request, reusing the
// client-supplied one when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := util.ContextWithRequestID(c.Request.Context(), id)
		ctx = util.ContextWithStartTime(ctx, time.Now())
		c.Request = c.Request.WithContext(ctx)

		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Logging logs one line per request after the handler chain completes.
func Logging(logger observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		fields := []observability.Field{
			observability.String("method", c.Request.Method),
			observability.String("path", path),
			observability.Int("status", c.Writer.Status()),
			observability.Duration("duration", time.Since(start)),
			observability.String("clientIP", c.ClientIP()),
		}
		if id := util.RequestIDFromContext(c.Request.Context()); id != "" {
			fields = append(fields, observability.String("requestID", id))
		}
		if template := c.GetString(endpointContextKey); template != "" {
			fields = append(fields, observability.String("endpoint", template))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request completed", fields...)
		} else {
			logger.Info("request completed", fields...)
		}
	}
}

// Recovery converts panics into 500 responses instead of killing the
// connection.
func Recovery(logger observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					observability.Any("panic", r),
					observability.String("method", c.Request.Method),
					observability.String("path", c.Request.URL.Path),
					observability.String("stack", string(debug.Stack())),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal Server Error",
				})
			}
		}()
		c.Next()
	}
}

// MetricsMiddleware records request metrics labeled by the endpoint
// template the dispatch handler stored in the gin context. Requests
// that never matched an endpoint are aggregated under a single label
// so that arbitrary client paths cannot explode cardinality.
func MetricsMiddleware(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		metrics.IncActiveRequests(method)
		defer metrics.DecActiveRequests(method)

		c.Next()

		endpoint := c.GetString(endpointContextKey)
		if endpoint == "" {
			endpoint = observability.UnmatchedEndpoint
		}

		metrics.RecordRequest(method, endpoint, c.Writer.Status(), time.Since(start))
	}
}
