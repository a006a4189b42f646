package llm

import "time"

// Error message templates
const (
	errRateLimiter = "rate limiter error: %w"
)

// Circuit breaker defaults
const (
	defaultCircuitThreshold = 5
	defaultCircuitTimeout   = time.Minute
)

// Request defaults
const (
	defaultMaxTokens      = 256
	rateLimiterBurst      = 5
	defaultRateLimitRPS   = 1
	llmAPIKeyMock         = "mock"
	contentTypeToolUse    = "tool_use"
	contentTypeText       = "text"
	openRouterAPIEndpoint = "https://openrouter.ai/api/v1"
)

// Log key strings
const (
	logKeyProvider = "provider"
	logKeyModel    = "model"
	logKeyFunction = "function"
)

// Metric status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusNoCall  = "no_call"
)

// Metric values for gauges
const (
	MetricValueAvailable   = 1.0
	MetricValueUnavailable = 0.0
	MetricValueCBOpen      = 1.0
	MetricValueCBClosed    = 0.0
)

// Token kinds for usage metrics
const (
	tokenKindPrompt     = "prompt"
	tokenKindCompletion = "completion"
)
