package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/shruggbot/internal/core/errors"
)

var errProviderDown = errors.New("provider down")

type stubProvider struct {
	name      ProviderName
	priority  int
	available bool
	result    FunctionCallResult
	err       error
	calls     int
}

func (s *stubProvider) Name() ProviderName { return s.name }
func (s *stubProvider) IsAvailable() bool  { return s.available }
func (s *stubProvider) Priority() int      { return s.priority }

func (s *stubProvider) CallFunction(_ context.Context, _ FunctionCallRequest, _ string) (FunctionCallResult, error) {
	s.calls++

	return s.result, s.err
}

func newTestRegistry() *Registry {
	logger := zerolog.Nop()

	return NewRegistry(&logger)
}

func testCircuitConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{Threshold: 2, ResetAfter: time.Minute}
}

func TestRegistryNoProviders(t *testing.T) {
	r := newTestRegistry()

	_, err := r.CallFunction(context.Background(), FunctionCallRequest{})
	require.ErrorIs(t, err, ErrNoProvidersAvailable)
}

func TestRegistryPriorityOrder(t *testing.T) {
	r := newTestRegistry()

	low := &stubProvider{name: ProviderOpenRouter, priority: PriorityThirdFallback, available: true, result: FunctionCallResult{Called: true}}
	high := &stubProvider{name: ProviderOpenAI, priority: PriorityPrimary, available: true, result: FunctionCallResult{Called: true}}

	r.Register(low, testCircuitConfig())
	r.Register(high, testCircuitConfig())

	result, err := r.CallFunction(context.Background(), FunctionCallRequest{})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, result.Provider)
	assert.Equal(t, 1, high.calls)
	assert.Zero(t, low.calls)

	statuses := r.GetProviderStatuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, ProviderOpenAI, statuses[0].Name)
	assert.Equal(t, 2, r.ProviderCount())
}

func TestRegistryFallsBackOnError(t *testing.T) {
	r := newTestRegistry()

	primary := &stubProvider{name: ProviderOpenAI, priority: PriorityPrimary, available: true, err: errProviderDown}
	fallback := &stubProvider{name: ProviderAnthropic, priority: PriorityFallback, available: true, result: FunctionCallResult{Called: true, Name: "f"}}

	r.Register(primary, testCircuitConfig())
	r.Register(fallback, testCircuitConfig())

	result, err := r.CallFunction(context.Background(), FunctionCallRequest{})
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, result.Provider)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestRegistryReplyWithoutCallEndsChain(t *testing.T) {
	r := newTestRegistry()

	primary := &stubProvider{name: ProviderOpenAI, priority: PriorityPrimary, available: true, result: FunctionCallResult{Text: "no tools today"}}
	fallback := &stubProvider{name: ProviderAnthropic, priority: PriorityFallback, available: true, result: FunctionCallResult{Called: true}}

	r.Register(primary, testCircuitConfig())
	r.Register(fallback, testCircuitConfig())

	result, err := r.CallFunction(context.Background(), FunctionCallRequest{})
	require.NoError(t, err)
	assert.False(t, result.Called)
	assert.Zero(t, fallback.calls)
}

func TestRegistryAllProvidersFailed(t *testing.T) {
	r := newTestRegistry()

	r.Register(&stubProvider{name: ProviderOpenAI, priority: PriorityPrimary, available: true, err: errProviderDown}, testCircuitConfig())

	_, err := r.CallFunction(context.Background(), FunctionCallRequest{})
	require.ErrorIs(t, err, ErrAllProvidersFailed)
	require.ErrorIs(t, err, errProviderDown)
}

func TestRegistrySkipsUnavailable(t *testing.T) {
	r := newTestRegistry()

	missing := &stubProvider{name: ProviderGoogle, priority: PrioritySecondFallback}
	r.Register(missing, testCircuitConfig())

	_, err := r.CallFunction(context.Background(), FunctionCallRequest{})
	require.ErrorIs(t, err, ErrNoProvidersAvailable)
	assert.Zero(t, missing.calls)
}

func TestRegistryCircuitOpensAfterThreshold(t *testing.T) {
	r := newTestRegistry()

	failing := &stubProvider{name: ProviderOpenAI, priority: PriorityPrimary, available: true, err: errProviderDown}
	r.Register(failing, testCircuitConfig())

	for range 2 {
		_, err := r.CallFunction(context.Background(), FunctionCallRequest{})
		require.ErrorIs(t, err, ErrAllProvidersFailed)
	}

	_, err := r.CallFunction(context.Background(), FunctionCallRequest{})
	require.ErrorIs(t, err, ErrNoProvidersAvailable, "open circuit skips the provider")
	require.ErrorIs(t, err, apperrors.ErrCircuitBreakerOpen)
	assert.Equal(t, 2, failing.calls)
	assert.False(t, r.GetProviderStatuses()[0].CircuitBreakerOK)
}

func TestNewMockKeyRegistersOnlyMock(t *testing.T) {
	logger := zerolog.Nop()
	cfg := testConfigWithKey(llmAPIKeyMock)

	r := New(context.Background(), cfg, &logger)

	statuses := r.GetProviderStatuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, ProviderMock, statuses[0].Name)
}

func TestNewAlwaysRegistersPrimary(t *testing.T) {
	logger := zerolog.Nop()

	r := New(context.Background(), testConfigWithKey(""), &logger)

	statuses := r.GetProviderStatuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, ProviderOpenAI, statuses[0].Name)
	assert.True(t, statuses[0].Available)
}

type closingProvider struct {
	stubProvider
	closed bool
}

func (p *closingProvider) Close() error {
	p.closed = true

	return nil
}

func TestRegistryCloseReleasesClosers(t *testing.T) {
	r := newTestRegistry()

	closer := &closingProvider{stubProvider: stubProvider{name: ProviderGoogle, priority: PrioritySecondFallback, available: true}}
	r.Register(closer, testCircuitConfig())
	r.Register(&stubProvider{name: ProviderOpenAI, priority: PriorityPrimary, available: true}, testCircuitConfig())

	require.NoError(t, r.Close())
	assert.True(t, closer.closed)
}
