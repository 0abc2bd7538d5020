package costs

import "fmt"

// CollectorError represents a failed cost fetch for one provider/account
// pair. Collector failures are recovered locally: they degrade that
// account's contribution to zero and surface as response metadata, never
// as a fatal error for the whole request.
type CollectorError struct {
	// Provider is the provider whose fetch failed.
	Provider Provider `json:"provider"`

	// AccountID is the account whose fetch failed.
	AccountID string `json:"accountId"`

	// Message describes the failure.
	Message string `json:"message"`

	// Transient distinguishes retryable conditions (expired credentials,
	// rate limiting, network) from terminal ones (deactivated account,
	// malformed credentials).
	Transient bool `json:"transient"`

	// Cause is the underlying error, kept off the wire.
	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *CollectorError) Error() string {
	kind := "terminal"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("collector %s/%s %s error: %s", e.Provider, e.AccountID, kind, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *CollectorError) Unwrap() error {
	return e.Cause
}

// NewCollectorError wraps an underlying fetch error with provider and
// account attribution.
func NewCollectorError(provider Provider, accountID, message string, transient bool, cause error) *CollectorError {
	return &CollectorError{
		Provider:  provider,
		AccountID: accountID,
		Message:   message,
		Transient: transient,
		Cause:     cause,
	}
}

// ConfigurationError represents an invalid request parameter such as an
// unsupported currency or unknown provider. It is fatal for the single
// request and does not corrupt shared state.
type ConfigurationError struct {
	// Field is the parameter that is invalid.
	Field string

	// Message describes what is invalid.
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %q: %s", e.Field, e.Message)
}
