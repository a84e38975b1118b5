// Package provider holds the clients for the external collaborators: the
// activity extractor (an LLM chat endpoint), place search, directions, and
// weather. Every call carries the request context and the configured
// per-call timeout; idempotent reads are retried exactly once with backoff;
// a circuit breaker per provider sheds load from a flapping upstream.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/dayplan/itinerary-backend-go/internal/models"
)

// Options is the shared provider-client configuration
type Options struct {
	Timeout time.Duration
}

func newHTTPClient(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// statusError is an HTTP status outside 2xx
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func transientStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

// getJSON issues one GET through the breaker and decodes the response
func getJSON(ctx context.Context, hc *http.Client, cb *gobreaker.CircuitBreaker, url string, out any) error {
	return doJSON(ctx, hc, cb, http.MethodGet, url, nil, nil, out)
}

// postJSON issues one POST through the breaker and decodes the response
func postJSON(ctx context.Context, hc *http.Client, cb *gobreaker.CircuitBreaker, url string, headers map[string]string, body any, out any) error {
	return doJSON(ctx, hc, cb, http.MethodPost, url, headers, body, out)
}

func doJSON(ctx context.Context, hc *http.Client, cb *gobreaker.CircuitBreaker, method, url string, headers map[string]string, body any, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	_, err := cb.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, method, url, payload)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := hc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
			return nil, &statusError{code: resp.StatusCode, body: string(snippet)}
		}
		return nil, json.NewDecoder(resp.Body).Decode(out)
	})
	return err
}

// wrapErr classifies a raw call error into the provider taxonomy
func wrapErr(kind models.ProviderKind, err error) *models.ProviderError {
	if err == nil {
		return nil
	}
	transient := true
	if se, ok := err.(*statusError); ok {
		transient = transientStatus(se.code)
	}
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		// No point retrying into an open breaker
		transient = false
	}
	return &models.ProviderError{Kind: kind, Transient: transient, Err: err}
}

// retryOnce runs op, retrying exactly once with exponential backoff when the
// failure is transient. Only used for idempotent reads.
func retryOnce(ctx context.Context, kind models.ProviderKind, op func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 1), ctx)
	err := backoff.Retry(func() error {
		if err := op(); err != nil {
			perr := wrapErr(kind, err)
			if !perr.Transient {
				return backoff.Permanent(perr)
			}
			return perr
		}
		return nil
	}, policy)
	if err == nil {
		return nil
	}
	if perr, ok := err.(*models.ProviderError); ok {
		return perr
	}
	return wrapErr(kind, err)
}
