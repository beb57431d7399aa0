// Package http provides HTTP-based implementations of lorecrawl.Fetcher
// and lorecrawl.SitemapService for crawling static wiki sites.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/lorecrawl"
	"golang.org/x/time/rate"
)

// DefaultFetchTimeout is the default timeout for HTTP requests. The
// crawler usually supplies a shorter per-request context deadline; this
// is the client-level backstop.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxBodySize caps how many bytes of a response body are read.
// Wiki pages are far smaller; the cap guards against tarpits and
// mislinked binaries.
const DefaultMaxBodySize = 10 << 20 // 10 MB

// Ensure Fetcher implements lorecrawl.Fetcher at compile time.
var _ lorecrawl.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves content over HTTP. It performs exactly one attempt
// per call and reports any HTTP status through the result; retry policy
// belongs to the caller. It does not execute JavaScript and is suitable
// for static sites only.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	throttle    *rate.Limiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the client-level timeout for HTTP requests.
// Defaults to DefaultFetchTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize caps response body reads at n bytes. Larger bodies
// are truncated, not failed.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithThrottle applies a process-wide request rate ceiling across all
// domains, independent of the scheduler's per-domain budgets. Zero or
// negative rps disables it.
func WithThrottle(rps float64, burst int) Option {
	return func(f *Fetcher) {
		if rps <= 0 {
			f.throttle = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		f.throttle = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewFetcher creates an HTTP Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		userAgent:   lorecrawl.DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch performs one GET against the URL. A non-nil error means the
// request never produced an HTTP response; every received response,
// whatever its status, is returned as a result for the caller to judge.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*lorecrawl.FetchResult, error) {
	if f.throttle != nil {
		if err := f.throttle.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, err
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &lorecrawl.FetchResult{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		FinalURL:   finalURL,
	}, nil
}

// Close releases idle connections held by the underlying client.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
