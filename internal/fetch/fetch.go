// Package fetch retrieves pages politely: rate-limited requests, bounded
// retries with exponential backoff on transient failures, and an optional
// robots.txt gate. Outcomes are classified into the record status taxonomy
// rather than raw errors, so the pipeline can file every URL and move on.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/healthtextlab/medread/internal/cache"
	"github.com/healthtextlab/medread/internal/dataset"
	"github.com/healthtextlab/medread/internal/robots"
)

// Defaults applied when the corresponding Client field is zero.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxAttempts  = 3
	DefaultRetryDelay   = time.Second
	DefaultRedirectHops = 5
	DefaultMaxBodyBytes = 10 << 20
)

// Result is the classified outcome of fetching one URL. Status is
// dataset.StatusSuccess exactly when Body holds usable HTML.
type Result struct {
	Body        []byte
	ContentType string
	StatusCode  int

	Status dataset.Status
	Reason string

	FromCache bool
	Attempts  int
}

// Client fetches pages over HTTP. The zero value works; fields tune
// politeness and resilience.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxAttempts includes the initial attempt; only Retryable statuses are
	// tried again. Zero means DefaultMaxAttempts.
	MaxAttempts int
	// RetryDelay is the first backoff step; it doubles per retry
	// (1s, 2s, 4s with the default).
	RetryDelay time.Duration
	// MaxBodyBytes caps the response size; larger bodies classify as
	// request_error instead of being truncated.
	MaxBodyBytes    int64
	RedirectMaxHops int

	// Limiter spaces requests out. Nil disables rate limiting.
	Limiter *rate.Limiter
	// Robots, when set, records disallowed URLs as request_error without
	// fetching them.
	Robots *robots.Manager
	// Cache serves fresh entries without network I/O and revalidates stale
	// ones with conditional requests.
	Cache       *cache.HTTPCache
	CacheMaxAge time.Duration
	// BypassCache skips cache reads but still saves responses.
	BypassCache bool

	// Sleep replaces the backoff timer in tests. Nil uses real time.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewLimiter builds a rate limiter enforcing a minimum delay between
// requests. Non-positive delays disable limiting.
func NewLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// Retryable reports whether a status is worth another attempt: timeouts and
// the transient 5xx family the upstream is likely to clear.
func Retryable(s dataset.Status) bool {
	switch s {
	case dataset.StatusTimeout,
		dataset.HTTPError(http.StatusInternalServerError),
		dataset.HTTPError(http.StatusBadGateway),
		dataset.HTTPError(http.StatusServiceUnavailable):
		return true
	}
	return false
}

// Fetch retrieves one URL and classifies the outcome. It never returns an
// error; failures are encoded in Result.Status and Result.Reason.
func (c *Client) Fetch(ctx context.Context, rawURL string) Result {
	u, err := url.Parse(rawURL)
	if err != nil || !isHTTPScheme(u) {
		return Result{Status: dataset.StatusRequestError, Reason: fmt.Sprintf("unsupported URL %q", rawURL)}
	}

	if c.Robots != nil {
		allowed, _ := c.Robots.Allowed(ctx, rawURL)
		if !allowed {
			return Result{Status: dataset.StatusRequestError, Reason: "blocked by robots.txt"}
		}
	}

	if c.Cache != nil && !c.BypassCache && c.Cache.Fresh(ctx, rawURL, c.CacheMaxAge) {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil {
			if body, err := c.Cache.LoadBody(ctx, rawURL); err == nil {
				return Result{
					Body:        body,
					ContentType: meta.ContentType,
					StatusCode:  meta.StatusCode,
					Status:      dataset.StatusSuccess,
					FromCache:   true,
				}
			}
		}
	}

	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	var res Result
	for attempt := 0; attempt < attempts; attempt++ {
		res = c.tryOnce(ctx, rawURL)
		res.Attempts = attempt + 1
		if !Retryable(res.Status) || attempt == attempts-1 {
			break
		}
		if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
			break
		}
	}
	return res
}

func (c *Client) tryOnce(ctx context.Context, rawURL string) Result {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return Result{Status: dataset.StatusError, Reason: "canceled"}
		}
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{Status: dataset.StatusRequestError, Reason: err.Error()}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	// Stale cache entries still carry validators worth sending.
	var cachedMeta *cache.Entry
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil {
			cachedMeta = meta
			if meta.ETag != "" {
				req.Header.Set("If-None-Match", meta.ETag)
			}
			if meta.LastModified != "" {
				req.Header.Set("If-Modified-Since", meta.LastModified)
			}
		}
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cachedMeta != nil {
		if body, err := c.Cache.LoadBody(ctx, rawURL); err == nil {
			_ = c.Cache.Refresh(ctx, rawURL)
			return Result{
				Body:        body,
				ContentType: cachedMeta.ContentType,
				StatusCode:  cachedMeta.StatusCode,
				Status:      dataset.StatusSuccess,
				FromCache:   true,
			}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{
			StatusCode: resp.StatusCode,
			Status:     dataset.HTTPError(resp.StatusCode),
			Reason:     fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	ct := resp.Header.Get("Content-Type")
	if !isHTMLContentType(ct) {
		return Result{
			StatusCode:  resp.StatusCode,
			ContentType: ct,
			Status:      dataset.StatusRequestError,
			Reason:      fmt.Sprintf("unsupported content type %q", ct),
		}
	}

	maxBytes := c.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return classifyTransport(err)
	}
	if int64(len(body)) > maxBytes {
		return Result{
			StatusCode: resp.StatusCode,
			Status:     dataset.StatusRequestError,
			Reason:     fmt.Sprintf("response larger than %d bytes", maxBytes),
		}
	}

	if c.Cache != nil {
		_ = c.Cache.Save(ctx, rawURL, cache.Entry{
			ContentType:  ct,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			StatusCode:   resp.StatusCode,
		}, body)
	}
	return Result{
		Body:        body,
		ContentType: ct,
		StatusCode:  resp.StatusCode,
		Status:      dataset.StatusSuccess,
	}
}

func (c *Client) httpClient() *http.Client {
	hops := c.RedirectMaxHops
	if hops <= 0 {
		hops = DefaultRedirectHops
	}
	checkRedirect := func(req *http.Request, via []*http.Request) error {
		if len(via) >= hops {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
	if c.HTTPClient != nil {
		// Clone to attach the redirect policy without mutating the caller's
		// client.
		base := *c.HTTPClient
		base.CheckRedirect = checkRedirect
		return &base
	}
	return &http.Client{CheckRedirect: checkRedirect}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.RetryDelay
	if d <= 0 {
		d = DefaultRetryDelay
	}
	return d << attempt
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func classifyTransport(err error) Result {
	if errors.Is(err, context.Canceled) {
		return Result{Status: dataset.StatusError, Reason: "canceled"}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Result{Status: dataset.StatusTimeout, Reason: "request timeout"}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Result{Status: dataset.StatusTimeout, Reason: "request timeout"}
	}
	return Result{Status: dataset.StatusRequestError, Reason: err.Error()}
}

func isHTTPScheme(u *url.URL) bool {
	s := strings.ToLower(u.Scheme)
	return s == "http" || s == "https"
}

func isHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}
