package reaction

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/shruggbot/internal/core/errors"
	"github.com/lueurxax/shruggbot/internal/core/llm"
	"github.com/lueurxax/shruggbot/internal/platform/observability"
)

// Outcome labels for reaction metrics.
const (
	outcomeSuccess       = "success"
	outcomeFallback      = "fallback"
	outcomeInvalid       = "invalid"
	outcomeProviderError = "provider_error"
)

// Fallback reasons.
const (
	reasonNoCall        = "no_call"
	reasonWrongFunction = "wrong_function"
	reasonBadArguments  = "bad_arguments"
	reasonEmptyReaction = "empty_reaction"
	reasonMissingScore  = "missing_score"
)

const defaultMaxTokens = 150

// Completer is the completion provider the generator delegates to.
type Completer interface {
	CallFunction(ctx context.Context, req llm.FunctionCallRequest) (llm.FunctionCallResult, error)
}

// GeneratorConfig holds the immutable settings of a Generator.
type GeneratorConfig struct {
	Prompts     PromptBook
	Temperature float32
	MaxTokens   int
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithRand replaces the source of fallback scores. fn must return a value
// in [0, n).
func WithRand(fn func(n int) int) GeneratorOption {
	return func(g *Generator) {
		g.randIntN = fn
	}
}

// Generator turns a Request into a Result through the completion provider.
type Generator struct {
	completer    Completer
	preprocessor *Preprocessor
	cfg          GeneratorConfig
	randIntN     func(n int) int
	logger       *zerolog.Logger
}

// NewGenerator creates a Generator. A nil preprocessor leaves text as is.
func NewGenerator(completer Completer, preprocessor *Preprocessor, cfg GeneratorConfig, logger *zerolog.Logger, opts ...GeneratorOption) *Generator {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if preprocessor == nil {
		preprocessor = NewPreprocessor(nil, 0, logger)
	}

	if cfg.Prompts.fixed == nil {
		cfg.Prompts = DefaultPromptBook()
	}

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	g := &Generator{
		completer:    completer,
		preprocessor: preprocessor,
		cfg:          cfg,
		randIntN:     rand.IntN,
		logger:       logger,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// ReactionFunction is the function definition the provider must call.
func ReactionFunction() llm.FunctionDefinition {
	return llm.FunctionDefinition{
		Name:        FunctionName,
		Description: "Returns a sarcastic reaction and Shrugg-o-Meter score",
		Params: []llm.FunctionParam{
			{Name: "reaction", Type: llm.ParamString, Description: "A short, sarcastic one-liner reaction."},
			{Name: "score", Type: llm.ParamNumber, Description: "The Shrugg-o-Meter score from 1 (mild) to 10 (maximum rage)."},
		},
	}
}

// Generate produces a reaction. Empty text is rejected with
// apperrors.ErrEmptyText before the provider is called. Provider failures
// wrap apperrors.ErrProviderUnavailable. Unusable provider output yields the
// fallback result with a nil error.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	mode := ParseMode(string(req.Mode))

	if strings.TrimSpace(req.Text) == "" {
		observability.ReactionsTotal.WithLabelValues(mode.String(), outcomeInvalid).Inc()

		return Result{}, apperrors.ErrEmptyText
	}

	start := time.Now()
	defer func() {
		observability.ReactionDuration.WithLabelValues(mode.String()).Observe(time.Since(start).Seconds())
	}()

	text := g.preprocessor.Preprocess(ctx, req.Text, mode)
	prompt := g.cfg.Prompts.Build(mode, req.Tones, text)

	call, err := g.completer.CallFunction(ctx, llm.FunctionCallRequest{
		SystemPrompt: prompt.System,
		UserPrompt:   prompt.User,
		Function:     ReactionFunction(),
		Temperature:  g.cfg.Temperature,
		MaxTokens:    g.cfg.MaxTokens,
	})
	if err != nil {
		observability.ReactionsTotal.WithLabelValues(mode.String(), outcomeProviderError).Inc()

		return Result{}, fmt.Errorf("%w: %w", apperrors.ErrProviderUnavailable, err)
	}

	result, reason := parseCall(call)
	if reason != "" {
		g.logger.Warn().
			Str("mode", mode.String()).
			Str("reason", reason).
			Str("provider", string(call.Provider)).
			Str("text", call.Text).
			Msg("provider output unusable, returning fallback reaction")

		observability.ReactionFallbacks.WithLabelValues(reason).Inc()
		observability.ReactionsTotal.WithLabelValues(mode.String(), outcomeFallback).Inc()

		result = g.fallback()
	} else {
		observability.ReactionsTotal.WithLabelValues(mode.String(), outcomeSuccess).Inc()
	}

	observability.ReactionScores.Observe(float64(result.Score))

	return result, nil
}

func (g *Generator) fallback() Result {
	return Result{
		Reaction: FallbackReaction,
		Score:    ClampScore(g.randIntN(MaxScore) + MinScore),
		Fallback: true,
	}
}

type reactionArgs struct {
	Reaction *string  `json:"reaction"`
	Score    *float64 `json:"score"`
}

// parseCall validates the function call. A non-empty reason means the
// output is unusable.
func parseCall(call llm.FunctionCallResult) (Result, string) {
	if !call.Called {
		return Result{}, reasonNoCall
	}

	if call.Name != "" && call.Name != FunctionName {
		return Result{}, reasonWrongFunction
	}

	args, err := decodeArgs(call.Arguments)
	if err != nil {
		return Result{}, reasonBadArguments
	}

	if args.Reaction == nil || strings.TrimSpace(*args.Reaction) == "" {
		return Result{}, reasonEmptyReaction
	}

	if args.Score == nil {
		return Result{}, reasonMissingScore
	}

	return Result{
		Reaction: strings.TrimSpace(*args.Reaction),
		Score:    roundScore(*args.Score),
	}, ""
}

// decodeArgs parses the call arguments, repairing them once if they are
// not valid JSON.
func decodeArgs(raw string) (reactionArgs, error) {
	var args reactionArgs

	if err := json.Unmarshal([]byte(raw), &args); err == nil {
		return args, nil
	}

	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return args, fmt.Errorf("%w: %w", apperrors.ErrMalformedOutput, err)
	}

	args = reactionArgs{}
	if err := json.Unmarshal([]byte(repaired), &args); err != nil {
		return args, fmt.Errorf("%w: %w", apperrors.ErrMalformedOutput, err)
	}

	return args, nil
}
