// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Unexported errors (err*): Use for internal package errors
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Validation errors.
var (
	// ErrEmptyText indicates the reaction input was empty or whitespace only.
	ErrEmptyText = errors.New("text is required")
)

// Completion provider errors.
var (
	// ErrProviderUnavailable indicates the completion provider could not be
	// reached or rejected the call. It is never absorbed into a fallback result.
	ErrProviderUnavailable = errors.New("completion provider unavailable")

	// ErrMalformedOutput indicates the provider answered but the answer could
	// not be used. Callers absorb it into the fallback result.
	ErrMalformedOutput = errors.New("malformed provider output")

	// ErrCircuitBreakerOpen indicates the circuit breaker has tripped and requests are blocked.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// Link resolution errors.
var (
	// ErrNoTitle indicates a fetched document had no usable title.
	ErrNoTitle = errors.New("document has no title")
)

// Client and connection errors.
var (
	// ErrClientDisabled indicates a client or feature is disabled.
	ErrClientDisabled = errors.New("client disabled")
)
