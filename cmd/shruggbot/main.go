package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lueurxax/shruggbot/internal/app"
	"github.com/lueurxax/shruggbot/internal/core/reaction"
	"github.com/lueurxax/shruggbot/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "shruggbot",
		Short:         "Sarcastic one-liner reactions to headlines, links and thoughts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(), newBotCommand(), newReactCommand())

	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and frontend, plus the Telegram bot when a token is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd.Context(), func(ctx context.Context, application *app.App) error {
				return application.RunServe(ctx)
			})
		},
	}
}

func newBotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot with a health and metrics probe server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd.Context(), func(ctx context.Context, application *app.App) error {
				return application.RunBot(ctx)
			})
		},
	}
}

func newReactCommand() *cobra.Command {
	var (
		mode  string
		tones reaction.Tones
	)

	cmd := &cobra.Command{
		Use:   "react <text>",
		Short: "Generate one reaction and print it as share text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := reaction.Request{
				Text:  strings.Join(args, " "),
				Mode:  reaction.ParseMode(mode),
				Tones: tones,
			}

			return runWithApp(cmd.Context(), func(ctx context.Context, application *app.App) error {
				out, err := application.React(ctx, req)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)

				return err
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(reaction.ModeGeneral), "reaction mode (general, corporate, horoscope, political)")
	cmd.Flags().IntVar(&tones.Sarcasm, "sarcasm", reaction.DefaultToneLevel, "sarcasm level 1-10 (general mode)")
	cmd.Flags().IntVar(&tones.Nihilism, "nihilism", reaction.DefaultToneLevel, "nihilism level 1-10 (general mode)")
	cmd.Flags().IntVar(&tones.Absurdity, "absurdity", reaction.DefaultToneLevel, "absurdity level 1-10 (general mode)")

	return cmd
}

func runWithApp(ctx context.Context, run func(context.Context, *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)

		return err
	}

	logger := newLogger(cfg.AppEnv, cfg.LogLevel)

	application := app.New(ctx, cfg, &logger)

	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to release LLM clients")
		}
	}()

	if err := run(ctx, application); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")

			return nil
		}

		logger.Error().Err(err).Msg("application error")

		return err
	}

	return nil
}

func newLogger(appEnv, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).Level(lvl).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
