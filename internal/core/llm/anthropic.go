package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lueurxax/shruggbot/internal/platform/config"
)

// Anthropic model constants.
const (
	ModelClaudeHaiku = "claude-haiku-4-5"

	// Default model for Anthropic.
	defaultAnthropicModel = ModelClaudeHaiku

	// Rate limiter settings for Anthropic.
	anthropicRateLimiterBurst = 5
)

// anthropicProvider implements the Provider interface for Anthropic Claude.
type anthropicProvider struct {
	cfg         *config.Config
	client      anthropic.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
}

// NewAnthropicProvider creates a new Anthropic LLM provider.
func NewAnthropicProvider(cfg *config.Config, logger *zerolog.Logger) *anthropicProvider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.AnthropicAPIKey)}
	if cfg.LLMTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.LLMTimeout))
	}

	rps := cfg.LLMRateLimitRPS
	if rps <= 0 {
		rps = defaultRateLimitRPS
	}

	return &anthropicProvider{
		cfg:         cfg,
		client:      anthropic.NewClient(opts...),
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), anthropicRateLimiterBurst),
	}
}

// Name returns the provider identifier.
func (p *anthropicProvider) Name() ProviderName {
	return ProviderAnthropic
}

// IsAvailable returns true if the provider is configured and available.
func (p *anthropicProvider) IsAvailable() bool {
	return p.cfg.AnthropicAPIKey != ""
}

// Priority returns the provider priority.
func (p *anthropicProvider) Priority() int {
	return PriorityFallback
}

// resolveModel returns the appropriate model name for Anthropic.
func (p *anthropicProvider) resolveModel(model string) string {
	if strings.HasPrefix(model, "claude") {
		return model
	}

	if p.cfg.AnthropicModel != "" {
		return p.cfg.AnthropicModel
	}

	return defaultAnthropicModel
}

// CallFunction implements Provider interface using forced tool use.
func (p *anthropicProvider) CallFunction(ctx context.Context, req FunctionCallRequest, model string) (FunctionCallResult, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return FunctionCallResult{}, fmt.Errorf(errRateLimiter, err)
	}

	resolvedModel := p.resolveModel(model)

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(resolvedModel),
		MaxTokens: int64(maxTokensOrDefault(req.MaxTokens)),
		System: []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
		Tools: []anthropic.ToolUnionParam{
			{OfTool: buildAnthropicTool(req.Function)},
		},
		ToolChoice:  anthropic.ToolChoiceParamOfTool(req.Function.Name),
		Temperature: anthropic.Float(float64(req.Temperature)),
	})
	if err != nil {
		recordUsage(ProviderAnthropic, resolvedModel, StatusError, 0, 0)

		return FunctionCallResult{Model: resolvedModel}, fmt.Errorf("anthropic messages: %w", err)
	}

	result := extractAnthropicToolUse(resp)
	result.Model = resolvedModel

	recordUsage(ProviderAnthropic, resolvedModel, callStatus(result), int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens))

	return result, nil
}

func buildAnthropicTool(def FunctionDefinition) *anthropic.ToolParam {
	props := make(map[string]any, len(def.Params))

	for _, param := range def.Params {
		props[param.Name] = map[string]any{
			"type":        string(param.Type),
			"description": param.Description,
		}
	}

	return &anthropic.ToolParam{
		Name:        def.Name,
		Description: anthropic.String(def.Description),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: props,
			Required:   def.RequiredNames(),
		},
	}
}

// extractAnthropicToolUse returns the first tool_use block, collecting text
// blocks for logging.
func extractAnthropicToolUse(resp *anthropic.Message) FunctionCallResult {
	var (
		result FunctionCallResult
		text   strings.Builder
	)

	for _, block := range resp.Content {
		switch block.Type {
		case contentTypeText:
			text.WriteString(block.Text)
		case contentTypeToolUse:
			if !result.Called {
				result.Called = true
				result.Name = block.Name
				result.Arguments = string(block.Input)
			}
		}
	}

	result.Text = strings.TrimSpace(text.String())

	return result
}
