// Package httpx wraps outbound HTTP with politeness pacing and a bounded
// retry policy for transient upstream failures.
package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Response is the subset of an HTTP response the pipeline consumes. The
// body is fully read so the underlying connection is always released.
type Response struct {
	StatusCode int
	Body       []byte
}

// ClientConfig controls client behavior.
type ClientConfig struct {
	UserAgent string
	// Sleep is the backoff sleeper, replaceable in tests. Defaults to
	// time.Sleep.
	Sleep func(time.Duration)
}

// Client issues GET/POST requests through a shared cookie jar, pacing
// before every attempt and retrying transient failures per the injected
// policy. Non-transient responses (404, application-level denial bodies)
// are returned to the caller unmodified.
type Client struct {
	http   *http.Client
	pacer  Pacer
	policy *RetryPolicy
	cfg    ClientConfig
	log    *zap.Logger
}

// New builds a Client with a fresh cookie jar.
func New(policy *RetryPolicy, pacer Pacer, cfg ClientConfig, log *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &Client{
		http:   &http.Client{Jar: jar},
		pacer:  pacer,
		policy: policy,
		cfg:    cfg,
		log:    log,
	}, nil
}

// Get issues a paced, retried GET.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil, "")
}

// GetAJAX issues a GET carrying the X-Requested-With marker header the
// upstream listing endpoints expect.
func (c *Client) GetAJAX(ctx context.Context, rawURL string) (*Response, error) {
	return c.do(ctx, http.MethodGet, rawURL, http.Header{
		"X-Requested-With": []string{"XMLHttpRequest"},
	}, "")
}

// PostForm issues a paced, retried form-encoded POST.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) (*Response, error) {
	return c.do(ctx, http.MethodPost, rawURL, http.Header{
		"Content-Type": []string{"application/x-www-form-urlencoded"},
	}, form.Encode())
}

func (c *Client) do(ctx context.Context, method, rawURL string, header http.Header, body string) (*Response, error) {
	var lastErr error
	attempts := c.policy.MaxAttempts()

	for attempt := 1; attempt <= attempts; attempt++ {
		c.pacer.Pace()

		resp, err := c.attempt(ctx, method, rawURL, header, body)
		if err == nil && !c.policy.ShouldRetry(resp.StatusCode, nil) {
			return resp, nil
		}
		if err != nil {
			if !c.policy.ShouldRetry(0, err) {
				return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
			}
			lastErr = err
		} else {
			lastErr = fmt.Errorf("upstream returned %d", resp.StatusCode)
		}

		if attempt < attempts {
			delay := c.policy.Backoff(attempt)
			c.log.Warn("transient failure, backing off",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			c.cfg.Sleep(delay)
		}
	}

	return nil, fmt.Errorf("%s %s after %d attempts (%v): %w",
		method, rawURL, attempts, lastErr, ErrRetriesExhausted)
}

func (c *Client) attempt(ctx context.Context, method, rawURL string, header http.Header, body string) (*Response, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}
