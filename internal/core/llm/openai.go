package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"golang.org/x/time/rate"

	"github.com/lueurxax/shruggbot/internal/platform/config"
)

// openaiProvider talks to any OpenAI-compatible chat completions endpoint.
// It backs both the primary provider and OpenRouter.
type openaiProvider struct {
	name         ProviderName
	priority     int
	model        string
	apiKey       string
	keyOptional  bool
	client       *openai.Client
	logger       *zerolog.Logger
	rateLimiter  *rate.Limiter
	defaultModel string
}

type openaiProviderOptions struct {
	name        ProviderName
	priority    int
	apiKey      string
	baseURL     string
	model       string
	keyOptional bool
}

// NewOpenAIProvider creates the primary provider. It reports itself
// available even without a key so that calls fail at the API instead of
// being skipped.
func NewOpenAIProvider(cfg *config.Config, logger *zerolog.Logger) *openaiProvider {
	return newOpenAICompatible(cfg, logger, openaiProviderOptions{
		name:        ProviderOpenAI,
		priority:    PriorityPrimary,
		apiKey:      cfg.LLMAPIKey,
		baseURL:     cfg.LLMBaseURL,
		model:       cfg.LLMModel,
		keyOptional: true,
	})
}

// NewOpenRouterProvider creates an OpenRouter provider using the OpenAI wire format.
func NewOpenRouterProvider(cfg *config.Config, logger *zerolog.Logger) *openaiProvider {
	return newOpenAICompatible(cfg, logger, openaiProviderOptions{
		name:     ProviderOpenRouter,
		priority: PriorityThirdFallback,
		apiKey:   cfg.OpenRouterAPIKey,
		baseURL:  openRouterAPIEndpoint,
		model:    cfg.OpenRouterModel,
	})
}

func newOpenAICompatible(cfg *config.Config, logger *zerolog.Logger, opts openaiProviderOptions) *openaiProvider {
	clientCfg := openai.DefaultConfig(opts.apiKey)
	if opts.baseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(opts.baseURL, "/")
	}

	if cfg.LLMTimeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.LLMTimeout}
	}

	rps := cfg.LLMRateLimitRPS
	if rps <= 0 {
		rps = defaultRateLimitRPS
	}

	return &openaiProvider{
		name:         opts.name,
		priority:     opts.priority,
		model:        opts.model,
		apiKey:       opts.apiKey,
		keyOptional:  opts.keyOptional,
		client:       openai.NewClientWithConfig(clientCfg),
		logger:       logger,
		rateLimiter:  rate.NewLimiter(rate.Limit(rps), rateLimiterBurst),
		defaultModel: openai.GPT4o,
	}
}

// Name returns the provider identifier.
func (p *openaiProvider) Name() ProviderName {
	return p.name
}

// IsAvailable returns true if the provider is configured and available.
func (p *openaiProvider) IsAvailable() bool {
	return p.keyOptional || p.apiKey != ""
}

// Priority returns the provider priority.
func (p *openaiProvider) Priority() int {
	return p.priority
}

func (p *openaiProvider) resolveModel(model string) string {
	if model == "" {
		model = p.model
	}

	if model == "" {
		model = p.defaultModel
	}

	return model
}

// CallFunction implements Provider interface.
func (p *openaiProvider) CallFunction(ctx context.Context, req FunctionCallRequest, model string) (FunctionCallResult, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return FunctionCallResult{}, fmt.Errorf(errRateLimiter, err)
	}

	resolvedModel := p.resolveModel(model)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: resolvedModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.UserPrompt,
			},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        req.Function.Name,
					Description: req.Function.Description,
					Parameters:  buildJSONSchema(req.Function),
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: req.Function.Name},
		},
		Temperature: req.Temperature,
		MaxTokens:   maxTokensOrDefault(req.MaxTokens),
	})
	if err != nil {
		recordUsage(p.name, resolvedModel, StatusError, 0, 0)

		return FunctionCallResult{Model: resolvedModel}, fmt.Errorf("%s chat completion: %w", p.name, err)
	}

	result := extractOpenAIFunctionCall(resp)
	result.Model = resolvedModel

	recordUsage(p.name, resolvedModel, callStatus(result), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	p.logger.Debug().
		Str(logKeyProvider, string(p.name)).
		Str(logKeyModel, resolvedModel).
		Bool("called", result.Called).
		Str(logKeyFunction, result.Name).
		Msg("LLM function call response")

	return result, nil
}

// extractOpenAIFunctionCall picks the first tool call of the first choice.
// The legacy function_call field is honored for older compatible servers.
func extractOpenAIFunctionCall(resp openai.ChatCompletionResponse) FunctionCallResult {
	if len(resp.Choices) == 0 {
		return FunctionCallResult{}
	}

	msg := resp.Choices[0].Message
	result := FunctionCallResult{Text: msg.Content}

	switch {
	case len(msg.ToolCalls) > 0:
		result.Called = true
		result.Name = msg.ToolCalls[0].Function.Name
		result.Arguments = msg.ToolCalls[0].Function.Arguments
	case msg.FunctionCall != nil:
		result.Called = true
		result.Name = msg.FunctionCall.Name
		result.Arguments = msg.FunctionCall.Arguments
	}

	return result
}

func buildJSONSchema(def FunctionDefinition) jsonschema.Definition {
	props := make(map[string]jsonschema.Definition, len(def.Params))

	for _, param := range def.Params {
		props[param.Name] = jsonschema.Definition{
			Type:        jsonschema.DataType(param.Type),
			Description: param.Description,
		}
	}

	return jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: props,
		Required:   def.RequiredNames(),
	}
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}

	return n
}
