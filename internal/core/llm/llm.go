package llm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lueurxax/shruggbot/internal/platform/config"
)

// ParamType is the JSON schema type of a function parameter.
type ParamType string

// Supported parameter types.
const (
	ParamString ParamType = "string"
	ParamNumber ParamType = "number"
)

// FunctionParam describes one required argument of a declared function.
type FunctionParam struct {
	Name        string
	Type        ParamType
	Description string
}

// FunctionDefinition is the single callable function offered to the model.
// Every parameter is required.
type FunctionDefinition struct {
	Name        string
	Description string
	Params      []FunctionParam
}

// RequiredNames returns the parameter names in declaration order.
func (d FunctionDefinition) RequiredNames() []string {
	names := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		names = append(names, p.Name)
	}

	return names
}

// FunctionCallRequest is a system/user prompt pair with a forced function.
type FunctionCallRequest struct {
	SystemPrompt string
	UserPrompt   string
	Function     FunctionDefinition
	Temperature  float32
	MaxTokens    int
}

// FunctionCallResult is what the provider produced.
type FunctionCallResult struct {
	// Called is true when the provider returned a structured call.
	Called bool
	// Name is the function the provider called.
	Name string
	// Arguments holds the raw JSON arguments of the call.
	Arguments string
	// Text holds any free-text reply, kept for logging.
	Text string
	// Provider and Model identify who answered.
	Provider ProviderName
	Model    string
}

// Client is the completion provider seen by callers.
type Client interface {
	CallFunction(ctx context.Context, req FunctionCallRequest) (FunctionCallResult, error)
	GetProviderStatuses() []ProviderStatus
}

// buildCircuitConfig creates a CircuitBreakerConfig with defaults applied.
func buildCircuitConfig(cfg *config.Config) CircuitBreakerConfig {
	circuitCfg := CircuitBreakerConfig{
		Threshold:  cfg.LLMCircuitThreshold,
		ResetAfter: cfg.LLMCircuitTimeout,
	}

	if circuitCfg.Threshold == 0 {
		circuitCfg.Threshold = defaultCircuitThreshold
	}

	if circuitCfg.ResetAfter == 0 {
		circuitCfg.ResetAfter = defaultCircuitTimeout
	}

	return circuitCfg
}

// registerProviders registers all configured LLM providers with the registry.
func registerProviders(ctx context.Context, registry *Registry, cfg *config.Config, logger *zerolog.Logger, circuitCfg CircuitBreakerConfig) {
	if cfg.LLMAPIKey == llmAPIKeyMock {
		registry.Register(NewMockProvider(), circuitCfg)

		return
	}

	// The primary provider is registered even without a key so a missing
	// credential surfaces as a provider error instead of silent success.
	registry.Register(NewOpenAIProvider(cfg, logger), circuitCfg)

	if cfg.AnthropicAPIKey != "" {
		registry.Register(NewAnthropicProvider(cfg, logger), circuitCfg)
	}

	if cfg.GoogleAPIKey != "" {
		googleProvider, err := NewGoogleProvider(ctx, cfg, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to create Google LLM provider")
		} else {
			registry.Register(googleProvider, circuitCfg)
		}
	}

	if cfg.OpenRouterAPIKey != "" {
		registry.Register(NewOpenRouterProvider(cfg, logger), circuitCfg)
	}
}

// New creates a new LLM client with multi-provider fallback support.
// Providers are registered in priority order: OpenAI-compatible primary,
// then Anthropic, Google and OpenRouter when their keys are configured.
// LLM_API_KEY=mock registers only the deterministic mock provider.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *Registry {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	registry := NewRegistry(logger)
	registerProviders(ctx, registry, cfg, logger, buildCircuitConfig(cfg))

	return registry
}
