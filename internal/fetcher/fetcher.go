// Package fetcher retrieves raw archive pages. It owns the polite-client
// concerns: rate limiting, retry with exponential backoff for transient
// failures, and an optional page cache. Classifying a failure as
// transient or permanent happens here; the sync engine only ever sees a
// FetchError.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "fictrack/1.0"

	// Retry configuration for transient failures
	maxRetries      = 3
	initialInterval = 1 * time.Second
	maxInterval     = 16 * time.Second

	// Response bodies beyond this are not archive pages.
	maxBodySize = 8 << 20
)

// RawDocument is an unparsed page as fetched from the archive.
type RawDocument struct {
	URL  string
	Body []byte
}

// FetchError is a typed retrieval failure. Permanent errors (content
// removed, client errors) must not be retried; everything else is
// transient and safe to retry on the next pass.
type FetchError struct {
	URL        string
	StatusCode int
	Permanent  bool
	Err        error
}

func (e *FetchError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s fetch error for %s: HTTP %d", kind, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s fetch error for %s: %v", kind, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsPermanent reports whether err is a fetch failure that will not
// resolve by retrying.
func IsPermanent(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Permanent
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Rate      float64 // requests per second against the archive
	Burst     int
	Cache     *PageCache // nil disables caching
}

// Client fetches archive pages with rate limiting and retry logic.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *PageCache
	logger     *slog.Logger
}

// NewClient creates an archive page client.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Rate <= 0 {
		opts.Rate = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 2
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(opts.Rate), opts.Burst),
		cache:     opts.Cache,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// FetchListing retrieves a listing page by its archive path.
func (c *Client) FetchListing(ctx context.Context, path string) (*RawDocument, error) {
	return c.fetch(ctx, path, true)
}

// FetchWorkPage retrieves the current page for a work. Never cached: the
// sync diff needs the live chapter state.
func (c *Client) FetchWorkPage(ctx context.Context, workID string) (*RawDocument, error) {
	return c.fetch(ctx, "/works/"+workID, false)
}

// FetchChapterPage retrieves a chapter body by its content id.
func (c *Client) FetchChapterPage(ctx context.Context, workID, contentID string) (*RawDocument, error) {
	return c.fetch(ctx, fmt.Sprintf("/works/%s/chapters/%s", workID, contentID), false)
}

func (c *Client) fetch(ctx context.Context, path string, cacheable bool) (*RawDocument, error) {
	fullURL := c.baseURL + path

	if cacheable && c.cache != nil {
		if body, ok := c.cache.Get(ctx, fullURL); ok {
			c.logger.Debug("page cache hit", "url", fullURL)
			return &RawDocument{URL: fullURL, Body: body}, nil
		}
	}

	var body []byte
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(&FetchError{URL: fullURL, Permanent: true, Err: err})
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return backoff.Permanent(&FetchError{URL: fullURL, Permanent: true, Err: err})
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &FetchError{URL: fullURL, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			fe := &FetchError{URL: fullURL, StatusCode: resp.StatusCode, Permanent: isPermanentStatus(resp.StatusCode)}
			if fe.Permanent {
				return backoff.Permanent(fe)
			}
			c.logger.Warn("retrying fetch", "url", fullURL, "status", resp.StatusCode)
			return fe
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return &FetchError{URL: fullURL, Err: err}
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialInterval
	policy.MaxInterval = maxInterval

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx))
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, fe
		}
		return nil, &FetchError{URL: fullURL, Err: err}
	}

	if cacheable && c.cache != nil {
		c.cache.Set(ctx, fullURL, body)
	}

	return &RawDocument{URL: fullURL, Body: body}, nil
}

// isPermanentStatus reports whether an HTTP status means the content is
// gone for good rather than temporarily unavailable.
func isPermanentStatus(statusCode int) bool {
	if statusCode == http.StatusTooManyRequests {
		return false
	}
	return statusCode >= 400 && statusCode < 500
}
