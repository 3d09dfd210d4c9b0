package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rickgao/pricesync/internal/version"
)

// APIError represents a non-2xx response from a remote source.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// doRequest performs an HTTP request against rawURL with extra query values.
func (c *Client) doRequest(ctx context.Context, method, rawURL string, query url.Values) ([]byte, error) {
	fullURL := rawURL
	if len(query) > 0 {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parse url: %w", err)
		}
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		fullURL = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// doWithRetry performs a request with jittered exponential backoff.
// Non-retryable API errors and context cancellation stop immediately.
func (c *Client) doWithRetry(ctx context.Context, method, rawURL string, query url.Values) ([]byte, error) {
	var (
		body      []byte
		attempts  int
		permanent bool
	)

	op := func() error {
		attempts++
		b, err := c.doRequest(ctx, method, rawURL, query)
		if err == nil {
			body = b
			return nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.IsRetryable() {
			permanent = true
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			permanent = true
			return backoff.Permanent(err)
		}
		return err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.retryBackoff
	eb.RandomizationFactor = 0.5
	eb.Multiplier = 2
	eb.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(max(c.maxRetries, 0))), ctx)

	notify := func(err error, wait time.Duration) {
		c.logger.Debug("retrying request",
			"attempt", attempts,
			"backoff", wait,
			"url", rawURL,
			"err", err,
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		if !permanent && attempts > c.maxRetries {
			return nil, fmt.Errorf("max retries exceeded: %w", err)
		}
		return nil, err
	}

	return body, nil
}

// getJSON performs a GET request with retries and decodes the JSON body.
func (c *Client) getJSON(ctx context.Context, rawURL string, query url.Values, result any) error {
	body, err := c.doWithRetry(ctx, http.MethodGet, rawURL, query)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
