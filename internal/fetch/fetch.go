// Package fetch retrieves the remote game catalog and image assets over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (compatible; FavorAdvisor/1.0)"
	// DefaultMaxBodyBytes caps a response body. The full item catalog is a few MB.
	DefaultMaxBodyBytes = 64 << 20
)

// Error describes a failed GET. StatusCode is zero when no response arrived.
type Error struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 && e.Cause == nil {
		return fmt.Sprintf("GET %s: HTTP status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether another attempt could succeed: server errors,
// throttling, and transport failures other than cancellation.
func (e *Error) Retryable() bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500:
		return true
	case e.StatusCode != 0:
		return false
	case errors.Is(e.Cause, context.Canceled), errors.Is(e.Cause, context.DeadlineExceeded):
		return false
	case errors.Is(e.Cause, errInvalidURL), errors.Is(e.Cause, errBodyTooLarge):
		return false
	}
	return e.Cause != nil
}

var (
	errInvalidURL   = errors.New("invalid URL")
	errBodyTooLarge = errors.New("response body too large")
)

// Options configures a Client.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	Headers      map[string]string
	MaxBodyBytes int64
	// Retries is the number of extra attempts after a retryable failure.
	Retries int
	// Backoff is the delay before the first retry; it doubles each time.
	Backoff time.Duration
	// HTTPClient overrides the transport; Timeout is ignored when set.
	HTTPClient *http.Client
}

// DefaultOptions returns the options used for catalog downloads.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: DefaultMaxBodyBytes,
		Retries:      2,
		Backoff:      500 * time.Millisecond,
	}
}

// Client performs GET requests with retries.
type Client struct {
	opts  Options
	http  *http.Client
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Client. A nil opts uses DefaultOptions.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	c := &Client{opts: *opts, http: opts.HTTPClient, sleep: sleepContext}
	if c.http == nil {
		c.http = &http.Client{Timeout: opts.Timeout}
	}
	if c.opts.UserAgent == "" {
		c.opts.UserAgent = DefaultUserAgent
	}
	if c.opts.MaxBodyBytes <= 0 {
		c.opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return c
}

// Fetch returns the body at rawURL, retrying retryable failures.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	backoff := c.opts.Backoff
	for attempt := 0; ; attempt++ {
		body, err := c.get(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		var ferr *Error
		if attempt >= c.opts.Retries || !errors.As(err, &ferr) || !ferr.Retryable() {
			return nil, err
		}
		if serr := c.sleep(ctx, backoff); serr != nil {
			return nil, &Error{URL: rawURL, Cause: serr}
		}
		backoff *= 2
	}
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &Error{URL: rawURL, Cause: errInvalidURL}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Cause: err}
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	for key, value := range c.opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &Error{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodyBytes+1))
	if err != nil {
		return nil, &Error{URL: rawURL, Cause: fmt.Errorf("failed to read response body: %w", err)}
	}
	if int64(len(body)) > c.opts.MaxBodyBytes {
		return nil, &Error{URL: rawURL, Cause: errBodyTooLarge}
	}
	return body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
