package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shruggbot_reactions_total",
		Help: "Total number of reaction requests by mode and outcome",
	}, []string{"mode", "outcome"})

	ReactionFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shruggbot_reaction_fallbacks_total",
		Help: "Total number of fallback results by reason",
	}, []string{"reason"})

	ReactionScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shruggbot_reaction_score",
		Help:    "Distribution of returned Shrugg-o-Meter scores",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	})

	ReactionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shruggbot_reaction_duration_seconds",
		Help:    "End-to-end duration of reaction generation",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"mode"})

	TitleResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shruggbot_title_resolutions_total",
		Help: "Total number of URL title resolutions by outcome",
	}, []string{"outcome"})

	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shruggbot_llm_requests_total",
		Help: "Total number of LLM requests",
	}, []string{"provider", "model", "status"})

	LLMTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shruggbot_llm_tokens_total",
		Help: "Total number of tokens used by kind",
	}, []string{"provider", "model", "kind"})

	// LLM fallback and circuit breaker metrics
	LLMFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shruggbot_llm_fallbacks_total",
		Help: "Total number of LLM provider fallback events",
	}, []string{"from_provider", "to_provider"})

	LLMCircuitBreakerOpens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shruggbot_llm_circuit_breaker_opens_total",
		Help: "Total number of times LLM circuit breaker opened",
	}, []string{"provider"})

	LLMCircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shruggbot_llm_circuit_breaker_state",
		Help: "Current state of LLM circuit breaker (0=closed, 1=open)",
	}, []string{"provider"})

	LLMRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shruggbot_llm_request_latency_seconds",
		Help:    "Latency of LLM requests by provider",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider", "model"})

	LLMProviderAvailable = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shruggbot_llm_provider_available",
		Help: "Whether LLM provider is currently available (0=no, 1=yes)",
	}, []string{"provider"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shruggbot_http_requests_total",
		Help: "Total number of HTTP requests by route and status",
	}, []string{"route", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shruggbot_http_request_duration_seconds",
		Help:    "Latency of HTTP requests by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shruggbot_rate_limited_total",
		Help: "Total number of requests denied by the rate limiter",
	}, []string{"surface"})

	TelegramMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shruggbot_telegram_messages_total",
		Help: "Total number of Telegram messages handled by command",
	}, []string{"command"})
)
