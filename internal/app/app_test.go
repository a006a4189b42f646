package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/shruggbot/internal/core/errors"
	"github.com/lueurxax/shruggbot/internal/core/reaction"
	"github.com/lueurxax/shruggbot/internal/platform/config"
)

func mockConfig() *config.Config {
	return &config.Config{
		LLMAPIKey:       "mock",
		LLMTemperature:  0.8,
		LLMTimeout:      time.Second,
		WebFetchRPS:     1,
		WebFetchTimeout: time.Second,
		TitleCacheSize:  4,
		TitleCacheTTL:   time.Minute,
		MaxInputRunes:   2000,
	}
}

func TestReactWithMockProvider(t *testing.T) {
	logger := zerolog.Nop()
	a := New(context.Background(), mockConfig(), &logger)

	out, err := a.React(context.Background(), reaction.Request{Text: "Mondays", Mode: reaction.ModeCorporate})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "🧠 ShruggBot Response to:\n\"Mondays\""))
	assert.Contains(t, out, "Shrugg-o-Meter: ")
}

func TestReactRejectsEmptyText(t *testing.T) {
	logger := zerolog.Nop()
	a := New(context.Background(), mockConfig(), &logger)

	_, err := a.React(context.Background(), reaction.Request{Text: " "})
	require.ErrorIs(t, err, apperrors.ErrEmptyText)
}

func TestRunServeRejectsUnknownLimiterBackend(t *testing.T) {
	logger := zerolog.Nop()
	cfg := mockConfig()
	cfg.RateLimitBackend = "carrier-pigeon"

	err := New(context.Background(), cfg, &logger).RunServe(context.Background())
	require.Error(t, err)
}
