package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shelflog/backend/internal/domain"
	"github.com/shelflog/backend/internal/logging"
	"github.com/shelflog/backend/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 2
	defaultUserAgent   = "shelflog/1.0"

	// maxBodyBytes bounds how much of a provider response is read
	maxBodyBytes = 4 << 20
)

// Options configures the outbound client shared by every provider
type Options struct {
	Timeout       time.Duration
	MaxAttempts   int
	RatePerSecond float64 // <= 0 disables limiting
	Burst         int
	UserAgent     string
	Logger        *log.Logger
	HTTPClient    *http.Client
}

// Client performs JSON requests against one external catalog with a
// timeout, a token-bucket rate limit and bounded retry for transient failures.
// Every failure is returned as *domain.ProviderError.
type Client struct {
	source      domain.Source
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	maxAttempts int
	userAgent   string
	logger      *log.Logger
	backoff     func(attempt int) time.Duration
}

// NewClient creates a client tagged with the given source
func NewClient(source domain.Source, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		source:      source,
		httpClient:  httpClient,
		rateLimiter: limiter,
		maxAttempts: maxAttempts,
		userAgent:   userAgent,
		logger:      logging.OrDefault(opts.Logger).WithPrefix(string(source)),
		backoff:     exponentialBackoff,
	}
}

// Source returns the provider tag this client reports errors under
func (c *Client) Source() domain.Source {
	return c.source
}

// GetJSON issues a GET and decodes a 2xx JSON body into out
func (c *Client) GetJSON(ctx context.Context, reqURL string, header http.Header, out interface{}) error {
	return c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	}, header, out)
}

// PostFormJSON issues a form-encoded POST and decodes a 2xx JSON body into out
func (c *Client) PostFormJSON(ctx context.Context, reqURL string, form url.Values, header http.Header, out interface{}) error {
	body := form.Encode()
	return c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, header, out)
}

func (c *Client) do(ctx context.Context, build func() (*http.Request, error), header http.Header, out interface{}) error {
	var lastErr *domain.ProviderError
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.backoff(attempt-1)); err != nil {
				return lastErr
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return &domain.ProviderError{Source: c.source, Cause: fmt.Errorf("rate limiter: %w", err)}
		}

		body, perr := c.attempt(build, header)
		if perr == nil {
			if err := json.Unmarshal(body, out); err != nil {
				c.logger.Warn("malformed payload", "err", err)
				return &domain.ProviderError{Source: c.source, Cause: fmt.Errorf("decode response: %w", err)}
			}
			return nil
		}

		lastErr = perr
		if !retryable(perr) {
			return perr
		}
		c.logger.Warn("request failed", "attempt", attempt, "max_attempts", c.maxAttempts, "err", perr.Cause)
	}
	return lastErr
}

// attempt executes one round trip and returns the body of a 2xx response
func (c *Client) attempt(build func() (*http.Request, error), header http.Header) ([]byte, *domain.ProviderError) {
	req, err := build()
	if err != nil {
		return nil, &domain.ProviderError{Source: c.source, Cause: fmt.Errorf("build request: %w", err)}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveProviderRequest(string(c.source), "transport_error", time.Since(start))
		return nil, &domain.ProviderError{Source: c.source, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.ObserveProviderRequest(string(c.source), "transport_error", time.Since(start))
		return nil, &domain.ProviderError{Source: c.source, StatusCode: resp.StatusCode, Cause: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveProviderRequest(string(c.source), "http_error", time.Since(start))
		return nil, &domain.ProviderError{
			Source:     c.source,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("unexpected response: %s", truncate(string(body), 200)),
		}
	}

	metrics.ObserveProviderRequest(string(c.source), "ok", time.Since(start))
	return body, nil
}

// retryable reports whether another attempt may succeed: 429, 5xx and
// transport errors other than timeouts. A timeout already spent the full budget.
func retryable(err *domain.ProviderError) bool {
	if err.StatusCode != 0 {
		return err.StatusCode == http.StatusTooManyRequests || err.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err.Cause, &netErr) && netErr.Timeout() {
		return false
	}
	return !errors.Is(err.Cause, context.Canceled) && !errors.Is(err.Cause, context.DeadlineExceeded)
}

// exponentialBackoff returns 500ms, 1s, 2s ... for attempt 1, 2, 3 ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
