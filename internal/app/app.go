// Package app wires ShruggBot's dependencies and runs its operational modes:
//
//   - Serve mode: HTTP API and frontend bundle, plus the Telegram bot when a
//     token is configured
//   - Bot mode: Telegram bot only, with a probe server for /health and /metrics
//   - React mode: a single reaction printed as share text
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lueurxax/shruggbot/internal/core/links"
	"github.com/lueurxax/shruggbot/internal/core/llm"
	"github.com/lueurxax/shruggbot/internal/core/reaction"
	"github.com/lueurxax/shruggbot/internal/platform/config"
	"github.com/lueurxax/shruggbot/internal/platform/observability"
	"github.com/lueurxax/shruggbot/internal/platform/ratelimit"
	"github.com/lueurxax/shruggbot/internal/platform/staticfiles"
	"github.com/lueurxax/shruggbot/internal/telegrambot"
	"github.com/lueurxax/shruggbot/internal/transport/httpapi"
)

const (
	limiterNamespaceHTTP     = "http"
	limiterNamespaceTelegram = "telegram"
)

// App holds the dependencies shared by every mode. They are built once and
// never mutated.
type App struct {
	cfg       *config.Config
	registry  *llm.Registry
	generator *reaction.Generator
	logger    *zerolog.Logger
}

// New builds the provider registry, the title resolver and the generator.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *App {
	registry := llm.New(ctx, cfg, logger)

	var fetchOpts []links.FetcherOption
	if cfg.WebFetchAllowPrivate {
		logger.Warn().Msg("link previews may reach private networks")

		fetchOpts = append(fetchOpts, links.AllowPrivateNetworks())
	}

	fetcher := links.NewWebFetcher(cfg.WebFetchRPS, cfg.WebFetchTimeout, fetchOpts...)
	titles := links.NewTitleResolver(fetcher, cfg.TitleCacheSize, cfg.TitleCacheTTL, logger)
	preprocessor := reaction.NewPreprocessor(titles, cfg.MaxInputRunes, logger)

	generator := reaction.NewGenerator(registry, preprocessor, reaction.GeneratorConfig{
		Prompts:     reaction.DefaultPromptBook(),
		Temperature: cfg.LLMTemperature,
	}, logger)

	for _, status := range registry.GetProviderStatuses() {
		logger.Info().
			Str("provider", string(status.Name)).
			Int("priority", status.Priority).
			Bool("available", status.Available).
			Msg("LLM provider status")
	}

	return &App{
		cfg:       cfg,
		registry:  registry,
		generator: generator,
		logger:    logger,
	}
}

// Generator returns the shared reaction generator.
func (a *App) Generator() *reaction.Generator {
	return a.generator
}

// RunServe runs the HTTP server, and the Telegram bot alongside it when
// TELEGRAM_BOT_TOKEN is set.
func (a *App) RunServe(ctx context.Context) error {
	a.logger.Info().Msg("Starting serve mode")

	limiter, closeLimiter, err := ratelimit.New(a.cfg, limiterNamespaceHTTP, a.logger)
	if err != nil {
		return fmt.Errorf("rate limiter init: %w", err)
	}

	defer a.closeQuietly(closeLimiter)

	bundle, err := staticfiles.Resolve(a.cfg.StaticDir)
	if err != nil {
		a.logger.Warn().Err(err).Msg("serving API without frontend bundle")
	}

	server := httpapi.NewServer(a.cfg, a.generator, limiter, bundle, a.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(gctx)
	})

	if a.cfg.TelegramBotToken != "" {
		g.Go(func() error {
			return a.runTelegram(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}

// RunBot runs the Telegram bot with a probe server on the HTTP address.
func (a *App) RunBot(ctx context.Context) error {
	a.logger.Info().Msg("Starting bot mode")

	probes := observability.NewServer(a.cfg.Addr(), a.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return probes.Start(gctx)
	})

	g.Go(func() error {
		return a.runTelegram(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot: %w", err)
	}

	return nil
}

func (a *App) runTelegram(ctx context.Context) error {
	limiter, closeLimiter, err := ratelimit.New(a.cfg, limiterNamespaceTelegram, a.logger)
	if err != nil {
		return fmt.Errorf("rate limiter init: %w", err)
	}

	defer a.closeQuietly(closeLimiter)

	b, err := telegrambot.New(a.cfg, a.generator, limiter, a.logger)
	if err != nil {
		return fmt.Errorf("bot initialization failed: %w", err)
	}

	if err := b.Run(ctx); err != nil {
		return fmt.Errorf("bot run: %w", err)
	}

	return nil
}

// React generates one reaction and renders it as share text.
func (a *App) React(ctx context.Context, req reaction.Request) (string, error) {
	result, err := a.generator.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generating reaction: %w", err)
	}

	return reaction.FormatShare(req.Text, result), nil
}

// Close releases provider clients.
func (a *App) Close() error {
	if err := a.registry.Close(); err != nil {
		return fmt.Errorf("closing LLM registry: %w", err)
	}

	return nil
}

func (a *App) closeQuietly(closeFn func() error) {
	if err := closeFn(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to close rate limiter")
	}
}
