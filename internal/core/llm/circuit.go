package llm

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/shruggbot/internal/core/errors"
)

// CircuitBreakerConfig configures when a provider is taken out of rotation.
type CircuitBreakerConfig struct {
	Threshold  int
	ResetAfter time.Duration
}

// CircuitBreaker implements the circuit breaker pattern for LLM providers.
type CircuitBreaker struct {
	threshold           int
	resetAfter          time.Duration
	consecutiveFailures int
	openUntil           time.Time
	now                 func() time.Time
	mu                  sync.Mutex
	logger              *zerolog.Logger
}

// NewCircuitBreaker creates a new circuit breaker with the given configuration.
func NewCircuitBreaker(cfg CircuitBreakerConfig, logger *zerolog.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		threshold:  cfg.Threshold,
		resetAfter: cfg.ResetAfter,
		now:        time.Now,
		logger:     logger,
	}
}

// CanAttempt returns true if the circuit allows an attempt.
func (cb *CircuitBreaker) CanAttempt() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return !cb.now().Before(cb.openUntil)
}

// CheckCircuit returns an error if the circuit is open.
func (cb *CircuitBreaker) CheckCircuit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.now().Before(cb.openUntil) {
		return fmt.Errorf("%w until %v", apperrors.ErrCircuitBreakerOpen, cb.openUntil)
	}

	return nil
}

// RecordSuccess records a successful call and resets the failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFailures = 0
}

// RecordFailure records a failed call and opens the circuit if threshold is reached.
// It reports whether this failure opened the circuit.
func (cb *CircuitBreaker) RecordFailure(providerName ProviderName) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	wasOpen := cb.now().Before(cb.openUntil)
	cb.consecutiveFailures++

	if cb.threshold <= 0 || cb.consecutiveFailures < cb.threshold {
		return false
	}

	cb.openUntil = cb.now().Add(cb.resetAfter)

	if cb.logger != nil && !wasOpen {
		cb.logger.Warn().
			Str(logKeyProvider, string(providerName)).
			Int("consecutive_failures", cb.consecutiveFailures).
			Time("open_until", cb.openUntil).
			Msg("LLM circuit breaker opened")
	}

	return !wasOpen
}
