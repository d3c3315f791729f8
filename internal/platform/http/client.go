package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Client is a wrapper for HTTP client with rate limiting
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	opts       ClientOptions
}

// ClientOptions holds options for creating a new Client
type ClientOptions struct {
	Timeout         time.Duration
	RequestsPerSec  int
	MaxRetries      int // 0 retries until MaxRetryTimeout elapses
	MaxRetryTimeout time.Duration
	InitialInterval time.Duration
}

// NewClient creates a new HTTP client with rate limiting
func NewClient(opts ClientOptions) *Client {
	// Set default values if not provided
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetryTimeout == 0 {
		opts.MaxRetryTimeout = 30 * time.Second
	}
	if opts.InitialInterval == 0 {
		opts.InitialInterval = backoff.DefaultInitialInterval
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		Limiter: rate.NewLimiter(rate.Every(time.Second/time.Duration(opts.RequestsPerSec)), opts.RequestsPerSec),
		opts:    opts,
	}
}

// DoRequest performs an HTTP request with rate limiting and retries.
// Client errors (4xx other than 429) are not retried.
func (c *Client) DoRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	// Wait for rate limiter
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var resp *http.Response
	operation := func() error {
		var err error
		resp, err = c.HTTPClient.Do(req.WithContext(ctx))
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}
		return nil
	}

	if err := backoff.Retry(operation, c.backOff(ctx)); err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.opts.InitialInterval
	exp.MaxElapsedTime = c.opts.MaxRetryTimeout

	var b backoff.BackOff = exp
	if c.opts.MaxRetries > 0 {
		b = backoff.WithMaxRetries(b, uint64(c.opts.MaxRetries))
	}
	return backoff.WithContext(b, ctx)
}

// HTTPStatusError represents an error due to a non-200 HTTP status code
type HTTPStatusError struct {
	StatusCode int
}

// Error implements the error interface
func (e *HTTPStatusError) Error() string {
	return "non-200 status code: " + http.StatusText(e.StatusCode)
}
