package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/shruggbot/internal/platform/observability"
)

// Registry errors.
var (
	ErrNoProvidersAvailable = errors.New("no LLM providers available")
	ErrAllProvidersFailed   = errors.New("all LLM providers failed")
)

// Registry manages LLM providers with fallback support.
type Registry struct {
	mu              sync.RWMutex
	providers       map[ProviderName]Provider
	order           []ProviderName // Priority order (highest first)
	circuitBreakers map[ProviderName]*CircuitBreaker
	logger          *zerolog.Logger
}

// NewRegistry creates a new provider registry.
func NewRegistry(logger *zerolog.Logger) *Registry {
	return &Registry{
		providers:       make(map[ProviderName]Provider),
		order:           make([]ProviderName, 0),
		circuitBreakers: make(map[ProviderName]*CircuitBreaker),
		logger:          logger,
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider, cfg CircuitBreakerConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; !exists {
		r.order = append(r.order, name)
	}

	r.providers[name] = p
	r.circuitBreakers[name] = NewCircuitBreaker(cfg, r.logger)

	// Sort by priority (descending)
	r.sortProvidersByPriority()

	available := MetricValueUnavailable
	if p.IsAvailable() {
		available = MetricValueAvailable
	}

	observability.LLMProviderAvailable.WithLabelValues(string(name)).Set(available)

	r.logger.Info().
		Str(logKeyProvider, string(name)).
		Int("priority", p.Priority()).
		Msg("registered LLM provider")
}

// ProviderCount returns the number of registered providers.
func (r *Registry) ProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}

// CallFunction implements Client with priority fallback across providers.
// A provider that answers, with or without a function call, ends the chain;
// only transport and API failures move on to the next provider.
func (r *Registry) CallFunction(ctx context.Context, req FunctionCallRequest) (FunctionCallResult, error) {
	r.mu.RLock()
	order := append([]ProviderName(nil), r.order...)
	r.mu.RUnlock()

	if len(order) == 0 {
		return FunctionCallResult{}, ErrNoProvidersAvailable
	}

	var (
		lastErr       error
		skipErr       error
		firstProvider ProviderName
	)

	for _, name := range order {
		result, attempted, err := r.tryProvider(ctx, name, req)
		if !attempted {
			if err != nil {
				skipErr = err
			}

			continue
		}

		if err != nil {
			lastErr = err

			if firstProvider == "" {
				firstProvider = name
			}

			if ctx.Err() != nil {
				break
			}

			continue
		}

		if firstProvider != "" {
			observability.LLMFallbacks.WithLabelValues(string(firstProvider), string(name)).Inc()

			r.logger.Info().
				Str(logKeyProvider, string(name)).
				Str("from_provider", string(firstProvider)).
				Msg("used fallback LLM provider")
		}

		return result, nil
	}

	if lastErr != nil {
		return FunctionCallResult{}, errors.Join(ErrAllProvidersFailed, lastErr)
	}

	if skipErr != nil {
		return FunctionCallResult{}, errors.Join(ErrNoProvidersAvailable, skipErr)
	}

	return FunctionCallResult{}, ErrNoProvidersAvailable
}

// tryProvider calls one provider. attempted is false when the provider was
// skipped because it is unavailable or its circuit is open; an open circuit
// is reported through err.
func (r *Registry) tryProvider(ctx context.Context, name ProviderName, req FunctionCallRequest) (FunctionCallResult, bool, error) {
	r.mu.RLock()
	p, exists := r.providers[name]
	cb := r.circuitBreakers[name]
	r.mu.RUnlock()

	if !exists || !p.IsAvailable() {
		return FunctionCallResult{}, false, nil
	}

	if circuitErr := cb.CheckCircuit(); circuitErr != nil {
		observability.LLMCircuitBreakerState.WithLabelValues(string(name)).Set(MetricValueCBOpen)
		observability.LLMProviderAvailable.WithLabelValues(string(name)).Set(MetricValueUnavailable)

		r.logger.Debug().
			Str(logKeyProvider, string(name)).
			Msg("skipping provider - circuit breaker open")

		return FunctionCallResult{}, false, fmt.Errorf("%s: %w", name, circuitErr)
	}

	start := time.Now()
	result, err := p.CallFunction(ctx, req, "")
	duration := time.Since(start)

	observability.LLMRequestLatency.WithLabelValues(string(name), result.Model).Observe(duration.Seconds())

	if err != nil {
		if cb.RecordFailure(name) {
			observability.LLMCircuitBreakerOpens.WithLabelValues(string(name)).Inc()
			observability.LLMCircuitBreakerState.WithLabelValues(string(name)).Set(MetricValueCBOpen)
			observability.LLMProviderAvailable.WithLabelValues(string(name)).Set(MetricValueUnavailable)
		}

		r.logger.Warn().
			Err(err).
			Str(logKeyProvider, string(name)).
			Float64("duration_seconds", duration.Seconds()).
			Msg("LLM provider failed")

		return FunctionCallResult{}, true, err
	}

	cb.RecordSuccess()

	observability.LLMCircuitBreakerState.WithLabelValues(string(name)).Set(MetricValueCBClosed)
	observability.LLMProviderAvailable.WithLabelValues(string(name)).Set(MetricValueAvailable)

	result.Provider = name

	return result, true, nil
}

// sortProvidersByPriority sorts providers by priority in descending order.
func (r *Registry) sortProvidersByPriority() {
	sort.SliceStable(r.order, func(i, j int) bool {
		pi := r.providers[r.order[i]].Priority()
		pj := r.providers[r.order[j]].Priority()

		return pi > pj
	})
}

// Close releases provider clients that hold connections.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error

	for _, name := range r.order {
		if closer, ok := r.providers[name].(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing %s provider: %w", name, err))
			}
		}
	}

	return errors.Join(errs...)
}

// ProviderStatus holds status information for a provider.
type ProviderStatus struct {
	Name             ProviderName
	Priority         int
	Available        bool
	CircuitBreakerOK bool
}

// GetProviderStatuses returns status information for all registered providers.
func (r *Registry) GetProviderStatuses() []ProviderStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]ProviderStatus, 0, len(r.order))

	for _, name := range r.order {
		p := r.providers[name]
		cb := r.circuitBreakers[name]

		statuses = append(statuses, ProviderStatus{
			Name:             name,
			Priority:         p.Priority(),
			Available:        p.IsAvailable(),
			CircuitBreakerOK: cb.CanAttempt(),
		})
	}

	return statuses
}

// Ensure Registry implements Client interface.
var _ Client = (*Registry)(nil)
