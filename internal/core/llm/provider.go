package llm

import "context"

// ProviderName identifies an LLM provider.
type ProviderName string

// Provider name constants.
const (
	ProviderOpenAI     ProviderName = "openai"
	ProviderOpenRouter ProviderName = "openrouter"
	ProviderAnthropic  ProviderName = "anthropic"
	ProviderGoogle     ProviderName = "google"
	ProviderMock       ProviderName = "mock"
)

// Priority constants for provider ordering.
const (
	PriorityPrimary        = 100 // Primary provider (OpenAI-compatible endpoint)
	PriorityFallback       = 50  // First fallback (Anthropic)
	PrioritySecondFallback = 25  // Second fallback (Google)
	PriorityThirdFallback  = 10  // Third fallback (OpenRouter)
	PriorityMock           = 0   // Mock provider for local runs
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider identifier.
	Name() ProviderName

	// IsAvailable returns true if the provider is configured and available.
	IsAvailable() bool

	// Priority returns the provider priority (higher = preferred).
	Priority() int

	// CallFunction sends the prompt pair and forces a call of req.Function.
	// A reachable provider that replies without calling the function
	// returns a result with Called=false and a nil error.
	CallFunction(ctx context.Context, req FunctionCallRequest, model string) (FunctionCallResult, error)
}
