package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/lueurxax/shruggbot/internal/platform/config"
)

// Google model constants.
const (
	// ModelGeminiFlashLite is the cheapest/fastest Google model.
	ModelGeminiFlashLite = "gemini-2.5-flash-lite"

	// Default model for Google (use cheapest available).
	defaultGoogleModel = ModelGeminiFlashLite

	// Rate limiter settings for Google.
	googleRateLimiterBurst = 5
)

// sanitizeUTF8 replaces invalid UTF-8 sequences.
// Google's protobuf API requires valid UTF-8, and fetched titles may contain invalid bytes.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

// googleProvider implements the Provider interface for Google Gemini.
type googleProvider struct {
	cfg         *config.Config
	client      *genai.Client
	logger      *zerolog.Logger
	rateLimiter *rate.Limiter
}

// NewGoogleProvider creates a new Google Gemini LLM provider.
func NewGoogleProvider(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*googleProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GoogleAPIKey))
	if err != nil {
		return nil, fmt.Errorf("creating google genai client: %w", err)
	}

	rps := cfg.LLMRateLimitRPS
	if rps <= 0 {
		rps = defaultRateLimitRPS
	}

	return &googleProvider{
		cfg:         cfg,
		client:      client,
		logger:      logger,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), googleRateLimiterBurst),
	}, nil
}

// Close closes the Google client.
func (p *googleProvider) Close() error {
	if p.client != nil {
		if err := p.client.Close(); err != nil {
			return fmt.Errorf("closing google genai client: %w", err)
		}
	}

	return nil
}

// Name returns the provider identifier.
func (p *googleProvider) Name() ProviderName {
	return ProviderGoogle
}

// IsAvailable returns true if the provider is configured and available.
func (p *googleProvider) IsAvailable() bool {
	return p.cfg.GoogleAPIKey != ""
}

// Priority returns the provider priority.
func (p *googleProvider) Priority() int {
	return PrioritySecondFallback
}

func (p *googleProvider) resolveModel(model string) string {
	if strings.HasPrefix(model, "gemini") {
		return model
	}

	if p.cfg.GoogleModel != "" {
		return p.cfg.GoogleModel
	}

	return defaultGoogleModel
}

// CallFunction implements Provider interface with function calling mode ANY.
func (p *googleProvider) CallFunction(ctx context.Context, req FunctionCallRequest, model string) (FunctionCallResult, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return FunctionCallResult{}, fmt.Errorf(errRateLimiter, err)
	}

	resolvedModel := p.resolveModel(model)

	genModel := p.client.GenerativeModel(resolvedModel)
	genModel.SetTemperature(req.Temperature)
	genModel.SetMaxOutputTokens(int32(maxTokensOrDefault(req.MaxTokens))) //nolint:gosec // bounded by config
	genModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(sanitizeUTF8(req.SystemPrompt))},
	}
	genModel.Tools = []*genai.Tool{buildGoogleTool(req.Function)}
	genModel.ToolConfig = &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode:                 genai.FunctionCallingAny,
			AllowedFunctionNames: []string{req.Function.Name},
		},
	}

	resp, err := genModel.GenerateContent(ctx, genai.Text(sanitizeUTF8(req.UserPrompt)))
	if err != nil {
		recordUsage(ProviderGoogle, resolvedModel, StatusError, 0, 0)

		return FunctionCallResult{Model: resolvedModel}, fmt.Errorf("google genai completion: %w", err)
	}

	result := extractGoogleFunctionCall(resp)
	result.Model = resolvedModel

	var promptTokens, completionTokens int
	if resp.UsageMetadata != nil {
		promptTokens = int(resp.UsageMetadata.PromptTokenCount)
		completionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	recordUsage(ProviderGoogle, resolvedModel, callStatus(result), promptTokens, completionTokens)

	return result, nil
}

func buildGoogleTool(def FunctionDefinition) *genai.Tool {
	props := make(map[string]*genai.Schema, len(def.Params))

	for _, param := range def.Params {
		schemaType := genai.TypeString
		if param.Type == ParamNumber {
			schemaType = genai.TypeNumber
		}

		props[param.Name] = &genai.Schema{
			Type:        schemaType,
			Description: param.Description,
		}
	}

	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        def.Name,
				Description: def.Description,
				Parameters: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: props,
					Required:   def.RequiredNames(),
				},
			},
		},
	}
}

// extractGoogleFunctionCall returns the first function call part of the
// first candidate. Gemini hands arguments back as a decoded map, so they
// are re-encoded to keep one parsing path for every provider. Arguments
// that cannot be encoded are left empty and count as malformed output.
func extractGoogleFunctionCall(resp *genai.GenerateContentResponse) FunctionCallResult {
	var result FunctionCallResult

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return result
	}

	var text strings.Builder

	for _, part := range resp.Candidates[0].Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			text.WriteString(string(v))
		case genai.FunctionCall:
			if result.Called {
				continue
			}

			result.Called = true
			result.Name = v.Name

			if args, err := json.Marshal(v.Args); err == nil {
				result.Arguments = string(args)
			}
		}
	}

	result.Text = strings.TrimSpace(text.String())

	return result
}
