package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/shruggbot/internal/core/errors"
	"github.com/lueurxax/shruggbot/internal/platform/config"
)

func testConfigWithKey(key string) *config.Config {
	return &config.Config{LLMAPIKey: key, LLMModel: "gpt-4o", LLMTimeout: time.Second}
}

func TestCircuitBreaker(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: 3, ResetAfter: time.Minute}, nil)
	cb.now = func() time.Time { return now }

	assert.False(t, cb.RecordFailure(ProviderOpenAI))
	assert.False(t, cb.RecordFailure(ProviderOpenAI))
	assert.True(t, cb.CanAttempt())

	assert.True(t, cb.RecordFailure(ProviderOpenAI), "third failure opens the circuit")
	assert.False(t, cb.CanAttempt())
	require.ErrorIs(t, cb.CheckCircuit(), apperrors.ErrCircuitBreakerOpen)

	assert.False(t, cb.RecordFailure(ProviderOpenAI), "already open")

	now = now.Add(time.Minute + time.Second)
	assert.True(t, cb.CanAttempt())
	require.NoError(t, cb.CheckCircuit())
}

func TestCircuitBreakerSuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: 2, ResetAfter: time.Minute}, nil)

	cb.RecordFailure(ProviderOpenAI)
	cb.RecordSuccess()
	cb.RecordFailure(ProviderOpenAI)

	assert.True(t, cb.CanAttempt())

	cb.RecordFailure(ProviderOpenAI)
	assert.False(t, cb.CanAttempt())
}

func TestCircuitBreakerZeroThresholdNeverOpens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: 0, ResetAfter: time.Minute}, nil)

	for range 10 {
		assert.False(t, cb.RecordFailure(ProviderOpenAI))
	}

	assert.True(t, cb.CanAttempt())
}

func TestBuildCircuitConfigDefaults(t *testing.T) {
	got := buildCircuitConfig(&config.Config{})

	assert.Equal(t, defaultCircuitThreshold, got.Threshold)
	assert.Equal(t, defaultCircuitTimeout, got.ResetAfter)
}
