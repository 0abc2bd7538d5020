package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"costwise-hq/atlas/pkg/costs"
	"costwise-hq/atlas/pkg/telemetry/logging"
)

// ClientConfig configures one provider's billing API client.
type ClientConfig struct {
	// Provider names the client in logs and errors.
	Provider costs.Provider

	// BaseURL is the billing API base URL, without a trailing slash.
	BaseURL string

	// APIKey is sent as a bearer token. Optional when CredentialsFile
	// is set.
	APIKey string

	// CredentialsFile is a path to a file whose trimmed contents become
	// the API key. Takes precedence over APIKey when both are set.
	CredentialsFile string

	// Timeout bounds one HTTP exchange including retries' backoff.
	// Default: 30s.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// Default: 2.
	MaxRetries int
}

// AuthError is a non-retryable credential failure. It satisfies
// TerminalError so collector errors built from it are marked
// non-transient.
type AuthError struct {
	Provider costs.Provider
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s billing API rejected credentials: %s", e.Provider, e.Message)
}

// Terminal marks the error as non-retryable.
func (e *AuthError) Terminal() bool { return true }

// APIError is a non-2xx billing API response that is not an auth
// failure. 4xx responses other than 429 are terminal; 5xx and 429 are
// transient.
type APIError struct {
	Provider   costs.Provider
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s billing API returned %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Terminal reports whether the status indicates a permanent failure.
func (e *APIError) Terminal() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && e.StatusCode != http.StatusTooManyRequests
}

// HTTPClient is the shared base for provider billing API clients. It
// provides bearer auth, JSON decoding, and retry with exponential
// backoff for transient failures. Concrete provider clients embed it
// and expose typed methods.
type HTTPClient struct {
	config ClientConfig
	client *http.Client
	apiKey string
}

// NewHTTPClient creates a billing API client. It reads the credentials
// file once at construction; a missing file is an error so that
// misconfiguration surfaces at startup rather than on the first fetch.
func NewHTTPClient(config ClientConfig) (*HTTPClient, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("%s billing client requires a base URL", config.Provider)
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	} else if config.MaxRetries == 0 {
		config.MaxRetries = 2
	}

	apiKey := config.APIKey
	if config.CredentialsFile != "" {
		raw, err := os.ReadFile(config.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s credentials file: %w", config.Provider, err)
		}
		apiKey = strings.TrimSpace(string(raw))
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPClient{
		config: config,
		client: &http.Client{Transport: transport, Timeout: config.Timeout},
		apiKey: apiKey,
	}, nil
}

// GetJSON performs a GET against path with the given query parameters
// and decodes the response body into out. Transient failures (network
// errors, 5xx, 429) are retried with exponential backoff up to
// MaxRetries; auth and other 4xx failures return immediately.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	logger := logging.Component("billing_client")

	target := strings.TrimSuffix(c.config.BaseURL, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			logger.Debug("retrying billing API call",
				"provider", c.config.Provider,
				"attempt", attempt,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			logger.Warn("billing API call failed, will retry",
				"provider", c.config.Provider,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to decode %s billing response: %w", c.config.Provider, err)
			}
			return nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Provider: c.config.Provider, Message: string(body)}
		}

		apiErr := &APIError{
			Provider:   c.config.Provider,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
		if apiErr.Terminal() {
			return apiErr
		}
		lastErr = apiErr
	}

	return fmt.Errorf("%s billing API unavailable after %d attempts: %w",
		c.config.Provider, c.config.MaxRetries+1, lastErr)
}
