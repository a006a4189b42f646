package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/shruggbot/internal/platform/observability"
	"github.com/lueurxax/shruggbot/internal/platform/ratelimit"
)

const (
	headerRequestID   = "X-Request-ID"
	ctxKeyRequestID   = "request_id"
	logFieldRequestID = "request_id"
	maxRequestIDLen   = 128
	routeUnmatched    = "unmatched"
	surfaceHTTP       = "http"
)

// requestID propagates a well-formed inbound X-Request-ID or assigns one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		c.Set(ctxKeyRequestID, id)
		c.Header(headerRequestID, id)

		c.Next()
	}
}

// requestLogger logs one line per request and records HTTP metrics.
func requestLogger(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = routeUnmatched
		}

		status := c.Writer.Status()
		latency := time.Since(start)

		observability.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		observability.HTTPLatency.WithLabelValues(route).Observe(latency.Seconds())

		event := logger.Debug()
		if status >= http.StatusInternalServerError {
			event = logger.Warn()
		}

		event.
			Str(logFieldRequestID, c.GetString(ctxKeyRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// rateLimit rejects clients over their quota with 429. Clients are keyed by
// gin's ClientIP, which only reads forwarding headers from trusted proxies.
// Limiter errors let the request through.
func rateLimit(limiter ratelimit.Limiter, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()

			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			c.Next()

			return
		}

		if !allowed {
			observability.RateLimited.WithLabelValues(surfaceHTTP).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: msgRateLimited})

			return
		}

		c.Next()
	}
}
