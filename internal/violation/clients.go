package violation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"custodia/internal/consent/models"
)

// Client posts containment requests to a collaborator over HTTP with bounded
// retries. Delivery intent is at-least-once: a request is retried until it
// succeeds or the attempt budget is spent, never silently dropped on the first
// failure.
type Client struct {
	baseURL    string
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
}

const (
	defaultAttempts = 3
	defaultBackoff  = 200 * time.Millisecond
	defaultTimeout  = 5 * time.Second
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithAttempts sets the delivery attempt budget.
func WithAttempts(n int) ClientOption {
	return func(cl *Client) {
		if n > 0 {
			cl.attempts = n
		}
	}
}

// WithBackoff sets the delay between attempts. The delay doubles per retry.
func WithBackoff(d time.Duration) ClientOption {
	return func(cl *Client) {
		if d > 0 {
			cl.backoff = d
		}
	}
}

// NewClient builds a collaborator client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		attempts:   defaultAttempts,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Halt implements ProcessingController against a remote controller.
func (c *Client) Halt(ctx context.Context, userID string) error {
	return c.post(ctx, "/block-processing", map[string]string{
		"user_id": userID,
	})
}

// Redact implements RedactionService against a remote redaction endpoint.
func (c *Client) Redact(ctx context.Context, userID string, category models.Category) error {
	return c.post(ctx, "/redact-data", map[string]string{
		"user_id":  userID,
		"category": string(category),
	})
}

func (c *Client) post(ctx context.Context, path string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	backoff := c.backoff
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			clientRetries.Inc()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		lastErr = c.doPost(ctx, path, body)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", path, c.attempts, lastErr)
}

func (c *Client) doPost(ctx context.Context, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
