package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"goldbees-trader/internal/logger"
)

// Client posts JSON to a single HTTP API and decodes the JSON reply.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      Retry
	secrets    []string
}

// Retry configures attempts and exponential backoff for PostJSON.
type Retry struct {
	Attempts int
	Wait     time.Duration
	MaxWait  time.Duration
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithRetry(r Retry) Option {
	return func(c *Client) { c.retry = r }
}

// WithRedacted masks secret in every error and log line the client
// produces. Use it for credentials carried in the URL path.
func WithRedacted(secret string) Option {
	return func(c *Client) {
		if secret != "" {
			c.secrets = append(c.secrets, secret)
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry:      Retry{Attempts: 1},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.Attempts < 1 {
		c.retry.Attempts = 1
	}
	return c
}

// StatusError is a non-2xx reply.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string { return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body) }

// retryable reports whether another attempt may succeed. Client errors
// other than 429 are final.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}

// PostJSON sends body as JSON to path and decodes the reply into out when
// out is non-nil. Transport errors, 429 and 5xx are retried.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	url := c.baseURL + path

	wait := c.retry.Wait
	var lastErr error
	for attempt := 1; attempt <= c.retry.Attempts; attempt++ {
		reply, err := c.post(ctx, url, payload)
		if err == nil {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(reply, out); err != nil {
				return fmt.Errorf("failed to parse JSON response: %w", err)
			}
			return nil
		}
		lastErr = c.redact(err)
		if !retryable(err) || attempt == c.retry.Attempts {
			break
		}

		logger.Warn(ctx, "HTTP request failed, retrying",
			"url", c.redactString(url), "attempt", attempt, "wait", wait, "error", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
		if c.retry.MaxWait > 0 && wait > c.retry.MaxWait {
			wait = c.retry.MaxWait
		}
	}
	if c.retry.Attempts > 1 {
		return fmt.Errorf("POST %s failed after %d attempts: %w", c.redactString(url), c.retry.Attempts, lastErr)
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, url string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	logger.Debug(ctx, "HTTP Response",
		"url", c.redactString(url),
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"bodySize", len(body))

	if resp.StatusCode >= 300 {
		return body, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func (c *Client) redact(err error) error {
	if len(c.secrets) == 0 {
		return err
	}
	return &redactedError{msg: c.redactString(err.Error()), err: err}
}

func (c *Client) redactString(s string) string {
	for _, secret := range c.secrets {
		s = strings.ReplaceAll(s, secret, "***")
	}
	return s
}
